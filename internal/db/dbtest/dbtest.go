// Package dbtest opens migrated in-memory SQLite databases for tests.
package dbtest

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/templui/apiplate/internal/db"
)

// New returns a fresh database with all migrations applied. It is closed
// when the test finishes.
func New(t testing.TB) *sqlx.DB {
	t.Helper()

	database, err := db.Init("sqlite", ":memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	err = db.RunMigrations(database.DB, "sqlite")
	require.NoError(t, err)

	return database
}
