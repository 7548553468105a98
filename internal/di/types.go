// Package di provides dependency injection type definitions.
package di

import (
	"github.com/harborline/cargosim/internal/database"
	"github.com/harborline/cargosim/internal/events"
	"github.com/harborline/cargosim/internal/modules/capacity"
	"github.com/harborline/cargosim/internal/modules/decks"
	"github.com/harborline/cargosim/internal/modules/demand"
	"github.com/harborline/cargosim/internal/modules/performance"
	"github.com/harborline/cargosim/internal/modules/pricing"
	"github.com/harborline/cargosim/internal/modules/rooms"
	"github.com/harborline/cargosim/internal/reliability"
)

// Container holds all dependencies for the application.
//
// Databases:
//   - game.db: decks, cards, containers, market intelligence, rooms
//   - ledger.db: append-only capacity decision events
//   - cache.db: derived weekly performance summaries and their patch log
type Container struct {
	// Databases
	GameDB   *database.DB
	LedgerDB *database.DB
	CacheDB  *database.DB

	// Event bus shared by every publishing service
	Bus *events.Bus

	// Repositories
	PricingRepo     *pricing.Repository
	DeckRepo        *decks.Repository
	RoomRepo        *rooms.Repository
	CapacityRepo    *capacity.Repository
	PerformanceRepo *performance.Repository

	// Services
	PriceTable         *pricing.Table
	PricingService     *pricing.Service
	DeckService        *decks.Service
	DemandService      *demand.Service
	CapacityService    *capacity.Service
	PerformanceService *performance.Service

	// Backups; nil unless a bucket is configured
	BackupService *reliability.BackupService
}

// Databases returns every open database in a stable order
func (c *Container) Databases() []*database.DB {
	var out []*database.DB
	for _, db := range []*database.DB{c.GameDB, c.LedgerDB, c.CacheDB} {
		if db != nil {
			out = append(out, db)
		}
	}
	return out
}

// Close closes every database
func (c *Container) Close() {
	for _, db := range c.Databases() {
		_ = db.Close()
	}
}
