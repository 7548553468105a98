// Package testing provides database and fixture helpers shared by package tests.
package testing

import (
	"fmt"
	"os"
	"testing"

	"github.com/harborline/cargosim/internal/database"
)

// profiles maps the known database names to their production profile.
var profiles = map[string]database.DatabaseProfile{
	"game":   database.ProfileStandard,
	"ledger": database.ProfileLedger,
	"cache":  database.ProfileCache,
}

// NewTestDB creates a temporary-file SQLite database with its embedded schema applied.
// Supported names: "game", "ledger", "cache". Unknown names get an empty database.
// The returned cleanup function closes the connection and removes the file.
func NewTestDB(t *testing.T, name string) (*database.DB, func()) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", fmt.Sprintf("test_%s_*.db", name))
	if err != nil {
		t.Fatalf("Failed to create temporary database file: %v", err)
	}
	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()

	profile, ok := profiles[name]
	if !ok {
		profile = database.ProfileStandard
	}

	db, err := database.New(database.Config{
		Path:    tmpPath,
		Profile: profile,
		Name:    name,
	})
	if err != nil {
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}

	return db, func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database %s: %v", name, err)
		}
		for _, suffix := range []string{"", "-wal", "-shm"} {
			_ = os.Remove(tmpPath + suffix)
		}
	}
}
