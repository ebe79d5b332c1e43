package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/rvallee/portfolio-analytics/internal/database"
)

// SetupTestDB opens a fresh SQLite price cache in a test temp directory,
// applies all migrations, and closes it when the test finishes.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "price_cache_test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}
