package di

import (
	"fmt"
	"path/filepath"

	"github.com/harborline/cargosim/internal/config"
	"github.com/harborline/cargosim/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens game, ledger and cache databases and applies their schemas
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	specs := []struct {
		name    string
		profile database.DatabaseProfile
		target  **database.DB
	}{
		{"game", database.ProfileStandard, &container.GameDB},
		{"ledger", database.ProfileLedger, &container.LedgerDB}, // Maximum safety for the decision log
		{"cache", database.ProfileCache, &container.CacheDB},    // Rebuildable from ledger + game
	}

	for _, spec := range specs {
		db, err := database.New(database.Config{
			Path:    filepath.Join(cfg.DataDir, spec.name+".db"),
			Profile: spec.profile,
			Name:    spec.name,
			Driver:  cfg.DBDriver,
		})
		if err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to initialize %s database: %w", spec.name, err)
		}
		*spec.target = db
	}

	for _, db := range container.Databases() {
		if err := db.Migrate(); err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	log.Info().
		Str("data_dir", cfg.DataDir).
		Str("driver", container.GameDB.Driver()).
		Msg("Databases initialized")

	return container, nil
}
