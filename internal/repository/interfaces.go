package repository

import (
	"context"

	"github.com/vytor/likescenter/internal/models"
)

// ProfileRepository handles profile data access
type ProfileRepository interface {
	// UpsertBatch applies all items in one transaction and returns the
	// distinct statuses of the touched rows after the write.
	UpsertBatch(ctx context.Context, items []models.ProfileData) ([]models.Status, error)
	// UpdateStatus returns the status the profile had before the update, or
	// errors.ErrNotFound when the id is absent.
	UpdateStatus(ctx context.Context, id string, status models.Status) (models.Status, error)
	Get(ctx context.Context, id string) (*models.Profile, error)
	List(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, error)
	Count(ctx context.Context, status models.Status) (int, error)
}

// MetadataRepository is a small durable key/value store for local state that
// lives outside the profile table.
type MetadataRepository interface {
	// Get returns (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
