package testutil

import (
	"path/filepath"
	"testing"

	"workhub-backend/pkg/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens an in-memory SQLite database with all models migrated.
// The connection is closed when the test completes.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Every pooled connection to :memory: would see its own empty database
	return openTestDB(t, ":memory:", 1)
}

// NewPooledTestDB opens a file-backed SQLite database shared by several
// pooled connections, for tests that exercise concurrent transactions.
// Transactions begin IMMEDIATE and wait on the busy timeout for the writer lock.
func NewPooledTestDB(t *testing.T, maxConns int) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	return openTestDB(t, "file:"+path+"?_busy_timeout=10000&_txlock=immediate", maxConns)
}

func openTestDB(t *testing.T, dsn string, maxConns int) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("getting sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(maxConns)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	t.Cleanup(func() {
		if err := sqlDB.Close(); err != nil {
			t.Errorf("closing test database: %v", err)
		}
	})

	return db
}
