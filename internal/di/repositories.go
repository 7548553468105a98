package di

import (
	"github.com/harborline/cargosim/internal/config"
	"github.com/harborline/cargosim/internal/modules/capacity"
	"github.com/harborline/cargosim/internal/modules/decks"
	"github.com/harborline/cargosim/internal/modules/performance"
	"github.com/harborline/cargosim/internal/modules/pricing"
	"github.com/harborline/cargosim/internal/modules/rooms"
	"github.com/rs/zerolog"
)

// InitializeRepositories creates all repositories
func InitializeRepositories(container *Container, cfg *config.Config, log zerolog.Logger) error {
	table, err := pricing.Builtin()
	if err != nil {
		return err
	}
	container.PriceTable = table

	container.PricingRepo = pricing.NewRepository(container.GameDB.Conn(), log)
	container.DeckRepo = decks.NewRepository(container.GameDB.Conn(), table, log)
	container.RoomRepo = rooms.NewRepository(container.GameDB.Conn(), cfg.DefaultTotalRounds, log)
	container.CapacityRepo = capacity.NewRepository(container.LedgerDB.Conn(), log)
	container.PerformanceRepo = performance.NewRepository(container.CacheDB.Conn(), log)

	log.Info().Msg("Repositories initialized")
	return nil
}
