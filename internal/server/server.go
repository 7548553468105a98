// Package server provides the HTTP server and routing for cargosim.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/harborline/cargosim/internal/config"
	"github.com/harborline/cargosim/internal/di"
	capacityhandlers "github.com/harborline/cargosim/internal/modules/capacity/handlers"
	deckhandlers "github.com/harborline/cargosim/internal/modules/decks/handlers"
	demandhandlers "github.com/harborline/cargosim/internal/modules/demand/handlers"
	performancehandlers "github.com/harborline/cargosim/internal/modules/performance/handlers"
	pricinghandlers "github.com/harborline/cargosim/internal/modules/pricing/handlers"
	roomhandlers "github.com/harborline/cargosim/internal/modules/rooms/handlers"
	"github.com/harborline/cargosim/internal/scheduler"
)

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Config    *config.Config
	Container *di.Container // DI container with all services
	Scheduler *scheduler.Scheduler
	Jobs      *di.JobInstances
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	baseLog        zerolog.Logger
	cfg            *config.Config
	container      *di.Container
	systemHandlers *SystemHandlers
	eventsStream   *EventsStreamHandler
	statusMonitor  *StatusMonitor
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		baseLog:   cfg.Log,
		cfg:       cfg.Config,
		container: cfg.Container,
	}

	s.systemHandlers = NewSystemHandlers(cfg.Log, cfg.Container.Databases(), cfg.Container.Bus, cfg.Scheduler)
	if cfg.Jobs != nil {
		s.systemHandlers.RegisterJob(cfg.Jobs.CheckWAL)
		s.systemHandlers.RegisterJob(cfg.Jobs.CoreIntegrity)
		s.systemHandlers.RegisterJob(cfg.Jobs.Maintenance)
		if cfg.Jobs.Backup != nil {
			s.systemHandlers.RegisterJob(cfg.Jobs.Backup)
		}
	}
	s.eventsStream = NewEventsStreamHandler(cfg.Container.Bus, cfg.Config.AllowedOrigins, cfg.Log)
	s.statusMonitor = NewStatusMonitor(cfg.Container.Bus, cfg.Container.Databases(), cfg.Log)

	s.setupMiddleware(cfg.Config.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // websocket streams are long-lived
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Router exposes the configured router for tests
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.systemHandlers.HandleHealth)

	// The websocket bypasses the request timeout
	s.router.Get("/api/events/ws", s.eventsStream.ServeHTTP)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/system/status", s.systemHandlers.HandleStatus)
		r.Post("/system/jobs/{job}", s.systemHandlers.HandleTriggerJob)

		c, log := s.container, s.baseLog
		deckhandlers.NewHandler(c.DeckService, log).RegisterRoutes(r)
		pricinghandlers.NewHandler(c.PricingService, log).RegisterRoutes(r)
		demandhandlers.NewHandler(c.DemandService, s.cfg.GenerationRatePerMinute, log).RegisterRoutes(r)
		roomhandlers.NewHandler(c.RoomRepo, log).RegisterRoutes(r)
		capacityhandlers.NewHandler(c.CapacityService, log).RegisterRoutes(r)
		performancehandlers.NewHandler(c.PerformanceService, log).RegisterRoutes(r)
	})
}

// Start starts the HTTP server and the status monitor
func (s *Server) Start() error {
	s.statusMonitor.Start(60 * time.Second)
	s.log.Info().Msg("Status monitor started")

	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	s.statusMonitor.Stop()
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
