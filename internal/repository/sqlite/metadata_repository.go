package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"github.com/vytor/likescenter/internal/logger"
	"github.com/vytor/likescenter/internal/repository"
)

type metadataRepository struct {
	db *sql.DB
}

// NewMetadataRepository creates a MetadataRepository backed by the metadata table.
func NewMetadataRepository(db *sql.DB) repository.MetadataRepository {
	return &metadataRepository{db: db}
}

func (r *metadataRepository) Get(ctx context.Context, key string) ([]byte, error) {
	log := logger.FromContext(ctx).WithPrefix("metadata_repo")

	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if stderrors.Is(err, sql.ErrNoRows) {
		log.Debug("metadata key absent: %s", key)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get metadata[%s]: %v", key, err)
		return nil, fmt.Errorf("get metadata[%s]: %w", key, err)
	}
	return value, nil
}

func (r *metadataRepository) Set(ctx context.Context, key string, value []byte) error {
	log := logger.FromContext(ctx).WithPrefix("metadata_repo")
	log.Debug("setting metadata key: %s", key)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value
`, key, value)
	if err != nil {
		log.Error("failed to set metadata[%s]: %v", key, err)
		return fmt.Errorf("set metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *metadataRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, key)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("metadata_repo").Error("failed to delete metadata[%s]: %v", key, err)
		return fmt.Errorf("delete metadata[%s]: %w", key, err)
	}
	return nil
}
