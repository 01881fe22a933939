package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/sahayak-edu/sahayak/internal/db"
	"github.com/stretchr/testify/require"
)

// NewTestDB opens a migrated in-memory SQLite database, closed at test end.
// It holds a single connection.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return openTestDB(t, ":memory:")
}

// NewFileTestDB opens a migrated SQLite file under t.TempDir(). Use it when
// the test needs several live connections, such as concurrent readers.
func NewFileTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return openTestDB(t, filepath.Join(t.TempDir(), "library.db"))
}

func openTestDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(path)
	require.NoError(t, err, "open test db %s", path)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLUnitOfWork(database)
}
