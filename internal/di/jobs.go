package di

import (
	"fmt"

	"github.com/harborline/cargosim/internal/config"
	"github.com/harborline/cargosim/internal/reliability"
	"github.com/harborline/cargosim/internal/scheduler"
	"github.com/rs/zerolog"
)

// Schedules for jobs without their own config knob
const (
	walCheckSchedule      = "@every 5m"
	coreIntegritySchedule = "@hourly"
)

// JobInstances holds the scheduled jobs for manual triggering
type JobInstances struct {
	CheckWAL      *scheduler.CheckWALCheckpointsJob
	CoreIntegrity *scheduler.CheckCoreDatabasesJob
	Maintenance   *reliability.MaintenanceJob
	Backup        *reliability.BackupJob // nil when backups are disabled
}

// RegisterJobs creates jobs and registers them with the scheduler
func RegisterJobs(container *Container, cfg *config.Config, sched *scheduler.Scheduler, log zerolog.Logger) (*JobInstances, error) {
	if container == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}

	instances := &JobInstances{}

	instances.CheckWAL = scheduler.NewCheckWALCheckpointsJob(container.Databases()...)
	instances.CheckWAL.SetLogger(log.With().Str("job", "check_wal_checkpoints").Logger())
	if err := sched.AddJob(walCheckSchedule, instances.CheckWAL); err != nil {
		return nil, fmt.Errorf("failed to register WAL check job: %w", err)
	}

	// cache.db is rebuildable, so only game and ledger are integrity-checked hourly
	instances.CoreIntegrity = scheduler.NewCheckCoreDatabasesJob(container.GameDB, container.LedgerDB)
	instances.CoreIntegrity.SetLogger(log.With().Str("job", "check_core_databases").Logger())
	if err := sched.AddJob(coreIntegritySchedule, instances.CoreIntegrity); err != nil {
		return nil, fmt.Errorf("failed to register integrity job: %w", err)
	}

	instances.Maintenance = reliability.NewMaintenanceJob(container.Databases(), cfg.DataDir, log)
	if err := sched.AddJob(cfg.MaintenanceCron, instances.Maintenance); err != nil {
		return nil, fmt.Errorf("failed to register maintenance job: %w", err)
	}

	if container.BackupService != nil {
		instances.Backup = reliability.NewBackupJob(container.BackupService, cfg.Backup.RetentionDays, log)
		if err := sched.AddJob(cfg.Backup.Schedule, instances.Backup); err != nil {
			return nil, fmt.Errorf("failed to register backup job: %w", err)
		}
	}

	log.Info().Int("jobs", len(sched.Jobs())).Msg("Jobs registered")
	return instances, nil
}
