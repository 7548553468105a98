// Package handlers provides the HTTP handler for demand generation.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/harborline/cargosim/internal/domain"
	"github.com/harborline/cargosim/internal/httputil"
	"github.com/harborline/cargosim/internal/modules/demand"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Handler handles demand generation HTTP requests
type Handler struct {
	service *demand.Service
	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewHandler creates a new generation handler.
// perMinute <= 0 disables rate limiting.
func NewHandler(service *demand.Service, perMinute int, log zerolog.Logger) *Handler {
	h := &Handler{
		service: service,
		log:     log.With().Str("handler", "demand").Logger(),
	}
	if perMinute > 0 {
		h.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}
	return h
}

// HandleGenerate handles POST /api/decks/{deckID}/generate
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if h.limiter != nil && !h.limiter.Allow() {
		w.Header().Set("Retry-After", "60")
		httputil.WriteMessage(w, h.log, http.StatusTooManyRequests, "generation rate limit exceeded")
		return
	}

	deckID, err := strconv.ParseInt(chi.URLParam(r, "deckID"), 10, 64)
	if err != nil || deckID <= 0 {
		httputil.WriteError(w, h.log, &domain.ValidationError{Field: "deckID", Message: "must be a positive integer"})
		return
	}

	var req demand.GenerationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	result, err := h.service.Generate(r.Context(), deckID, req)
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	httputil.WriteData(w, h.log, http.StatusCreated, result)
}
