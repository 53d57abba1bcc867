package testdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"portfolio-service/common/logger"
	"portfolio-service/internal/db"
)

// SetupSQLite opens a migrated database in a per-test temp directory.
// The handle is closed when the test finishes.
//
// Usage:
//
//	func TestMyRepository(t *testing.T) {
//	    database := testdb.SetupSQLite(t)
//
//	    t.Run("Test1", func(t *testing.T) {
//	        testdb.CleanupTables(t, database, "contacts")
//	        // ... test
//	    })
//	}
func SetupSQLite(t *testing.T) *bun.DB {
	t.Helper()

	database, err := db.New(filepath.Join(t.TempDir(), "portfolio.db"), logger.Discard())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}

// CleanupTables empties the given tables. Ids keep increasing afterwards
// because AUTOINCREMENT sequences are left untouched.
func CleanupTables(t *testing.T, database *bun.DB, tables ...string) {
	t.Helper()

	ctx := context.Background()

	for _, table := range tables {
		_, err := database.ExecContext(ctx, "DELETE FROM "+table)
		require.NoError(t, err, "failed to clean table: %s", table)
	}
}
