package di

import (
	"context"
	"fmt"

	"github.com/harborline/cargosim/internal/config"
	"github.com/harborline/cargosim/internal/events"
	"github.com/harborline/cargosim/internal/modules/capacity"
	"github.com/harborline/cargosim/internal/modules/decks"
	"github.com/harborline/cargosim/internal/modules/demand"
	"github.com/harborline/cargosim/internal/modules/performance"
	"github.com/harborline/cargosim/internal/modules/pricing"
	"github.com/harborline/cargosim/internal/reliability"
	"github.com/rs/zerolog"
)

// InitializeServices creates all services. Repositories must be initialized first.
func InitializeServices(ctx context.Context, container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container.DeckRepo == nil {
		return fmt.Errorf("repositories not initialized")
	}

	container.Bus = events.NewBus(log)

	container.PricingService = pricing.NewService(container.PricingRepo, container.PriceTable, container.Bus, log)
	container.DeckService = decks.NewService(container.DeckRepo, container.Bus, log)

	var rng demand.Random
	if cfg.RandomSeed != 0 {
		rng = demand.NewSeededRandom(cfg.RandomSeed)
		log.Info().Int64("seed", cfg.RandomSeed).Msg("Demand generator seeded")
	} else {
		rng = demand.NewRandom()
	}
	container.DemandService = demand.NewService(container.DeckService, container.PricingService, rng, container.Bus, log)

	container.CapacityService = capacity.NewService(container.CapacityRepo, container.RoomRepo, container.Bus, log)
	container.PerformanceService = performance.NewService(
		container.PerformanceRepo,
		container.CapacityService,
		container.DeckService,
		container.RoomRepo,
		container.Bus,
		log,
	)

	if cfg.Backup.Enabled() {
		store, err := reliability.NewS3Store(ctx, cfg.Backup)
		if err != nil {
			return fmt.Errorf("failed to create backup store: %w", err)
		}
		container.BackupService = reliability.NewBackupService(
			store,
			container.Databases(),
			cfg.DataDir,
			cfg.Backup.Prefix,
			container.Bus,
			log,
		)
	}

	log.Info().Bool("backups", container.BackupService != nil).Msg("Services initialized")
	return nil
}
