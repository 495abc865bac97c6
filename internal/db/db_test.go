package db_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/likescenter/internal/db"
)

func TestOpen_AppliesMigrations(t *testing.T) {
	path := "file:" + filepath.Join(t.TempDir(), "likes.db")

	database, err := db.Open(path)
	require.NoError(t, err)
	defer database.Close()

	ctx := context.Background()
	for _, table := range []string{"profiles", "metadata"} {
		var name string
		err := database.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
	assert.NoError(t, database.Ping(ctx))
}

func TestOpen_ReopenIsIdempotent(t *testing.T) {
	path := "file:" + filepath.Join(t.TempDir(), "likes.db")

	first, err := db.Open(path)
	require.NoError(t, err)
	_, err = first.Exec(`INSERT INTO metadata (key, value) VALUES ('k', 'v')`)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := db.Open(path)
	require.NoError(t, err)
	defer second.Close()

	var value string
	require.NoError(t, second.QueryRow(`SELECT value FROM metadata WHERE key = 'k'`).Scan(&value))
	assert.Equal(t, "v", value)
}
