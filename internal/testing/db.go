// Package testing provides test utilities shared across the guildboard
// packages.
package testing

import (
	"fmt"
	"os"
	"testing"

	"github.com/titguild/guildboard/internal/database"
)

// NewTestDB creates a throwaway SQLite database for one test. Returns the
// database and an idempotent cleanup function that closes the connection and
// removes the file. Each call gets its own file so tests stay isolated.
func NewTestDB(t *testing.T, name string) (*database.DB, func()) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", fmt.Sprintf("test_%s_*.db", name))
	if err != nil {
		t.Fatalf("Failed to create temporary database file: %v", err)
	}
	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()

	db, err := database.New(database.Config{
		Path: tmpPath,
		Name: name,
	})
	if err != nil {
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}

	closed := false
	cleanup := func() {
		if closed {
			return
		}
		closed = true
		_ = db.Close()
		_ = os.Remove(tmpPath)
	}

	return db, cleanup
}
