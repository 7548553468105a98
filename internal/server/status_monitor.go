package server

import (
	"context"
	"sync"
	"time"

	"github.com/harborline/cargosim/internal/database"
	"github.com/harborline/cargosim/internal/events"
	"github.com/rs/zerolog"
)

// StatusMonitor periodically checks database health and emits an event when it changes
type StatusMonitor struct {
	emitter   events.Emitter
	databases []*database.DB
	log       zerolog.Logger

	mu         sync.Mutex
	lastStatus map[string]string
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewStatusMonitor creates a new status monitor
func NewStatusMonitor(emitter events.Emitter, databases []*database.DB, log zerolog.Logger) *StatusMonitor {
	return &StatusMonitor{
		emitter:   emitter,
		databases: databases,
		log:       log.With().Str("component", "status_monitor").Logger(),
		stop:      make(chan struct{}),
	}
}

// Start begins periodic status monitoring
func (m *StatusMonitor) Start(interval time.Duration) {
	go m.monitor(interval)
}

// Stop ends monitoring; it is safe to call more than once
func (m *StatusMonitor) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *StatusMonitor) monitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.checkStatuses()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.checkStatuses()
		}
	}
}

// checkStatuses runs a health check on every database and emits SystemStatusChanged
// on the first check and whenever any database status differs from the last one.
func (m *StatusMonitor) checkStatuses() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	current := make(map[string]string, len(m.databases))
	healthy := true
	for _, db := range m.databases {
		if err := db.HealthCheck(ctx); err != nil {
			current[db.Name()] = err.Error()
			healthy = false
			continue
		}
		current[db.Name()] = "ok"
	}

	m.mu.Lock()
	changed := m.lastStatus == nil || !sameStatus(m.lastStatus, current)
	m.lastStatus = current
	m.mu.Unlock()

	if !changed {
		return false
	}

	if healthy {
		m.log.Info().Int("databases", len(current)).Msg("System status healthy")
	} else {
		m.log.Error().Interface("databases", current).Msg("System status degraded")
	}

	if m.emitter != nil {
		m.emitter.EmitTyped("system", &events.SystemStatusData{
			Healthy:   healthy,
			Databases: current,
		})
	}
	return true
}

func sameStatus(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
