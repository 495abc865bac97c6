package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/vytor/likescenter/internal/db"
	"github.com/vytor/likescenter/internal/models"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The pool is pinned to one connection so every query sees the same memory DB.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(context.Background(), sqlDB), "failed to apply migrations")

	return sqlDB
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// BaseTime is a fixed reference instant for deterministic fixtures.
var BaseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// ProfileData builds remote items user_from..user_{to-1}; higher indexes are
// older, as in the remote feed.
func ProfileData(from, to int) []models.ProfileData {
	items := make([]models.ProfileData, 0, to-from)
	for i := from; i < to; i++ {
		items = append(items, models.ProfileData{
			ID:        fmt.Sprintf("user_%d", i),
			Name:      fmt.Sprintf("User %d", i),
			PhotoURL:  fmt.Sprintf("https://robohash.org/%d.png?set=set2", i),
			CreatedAt: BaseTime.Add(-time.Duration(i) * time.Hour),
		})
	}
	return items
}

// IDs extracts profile ids in order.
func IDs(profiles []models.Profile) []string {
	ids := make([]string, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
	}
	return ids
}
