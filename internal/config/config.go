// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/harborline/cargosim/internal/utils"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for all databases (always absolute)
	DBDriver string // "sqlite" (modernc, pure Go) or "sqlite3" (mattn, cgo)
	LogLevel string
	Port     int
	DevMode  bool

	AllowedOrigins []string

	// Generation
	GenerationRatePerMinute int   // 0 disables the limiter
	RandomSeed              int64 // 0 means time-seeded
	DefaultTotalRounds      int

	// Scheduling
	MaintenanceCron string

	Backup *BackupConfig
}

// BackupConfig holds S3-compatible backup settings.
// Backups are disabled unless a bucket is configured.
type BackupConfig struct {
	Bucket          string
	Endpoint        string // empty = AWS default endpoint resolution
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
	Schedule        string // cron expression
	RetentionDays   int    // 0 keeps every backup
}

// Enabled reports whether backups should be scheduled.
func (b *BackupConfig) Enabled() bool {
	return b != nil && b.Bucket != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("CARGOSIM_DATA_DIR", "data")

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:                 absDataDir,
		DBDriver:                strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		Port:                    getEnvAsInt("PORT", 8080),
		DevMode:                 getEnvAsBool("DEV_MODE", false),
		AllowedOrigins:          utils.ParseCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		GenerationRatePerMinute: getEnvAsInt("GENERATION_RATE_PER_MINUTE", 30),
		RandomSeed:              getEnvAsInt64("RANDOM_SEED", 0),
		DefaultTotalRounds:      getEnvAsInt("DEFAULT_TOTAL_ROUNDS", 4),
		MaintenanceCron:         getEnv("MAINTENANCE_CRON", "@every 15m"),
		Backup:                  loadBackupConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "sqlite3":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want sqlite or sqlite3)", c.DBDriver)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}

	if c.DefaultTotalRounds <= 0 {
		return fmt.Errorf("DEFAULT_TOTAL_ROUNDS must be positive, got %d", c.DefaultTotalRounds)
	}

	if c.Backup.Enabled() && c.Backup.Region == "" {
		return fmt.Errorf("BACKUP_S3_REGION is required when BACKUP_S3_BUCKET is set")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// loadBackupConfig loads S3 backup settings
func loadBackupConfig() *BackupConfig {
	return &BackupConfig{
		Bucket:          getEnv("BACKUP_S3_BUCKET", ""),
		Endpoint:        getEnv("BACKUP_S3_ENDPOINT", ""),
		Region:          getEnv("BACKUP_S3_REGION", "auto"),
		AccessKeyID:     getEnv("BACKUP_S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("BACKUP_S3_SECRET_ACCESS_KEY", ""),
		Prefix:          getEnv("BACKUP_S3_PREFIX", "cargosim/"),
		Schedule:        getEnv("BACKUP_SCHEDULE", "@daily"),
		RetentionDays:   getEnvAsInt("BACKUP_RETENTION_DAYS", 30),
	}
}
