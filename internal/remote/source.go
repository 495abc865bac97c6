// Package remote talks to the service that owns the likes feed.
package remote

import (
	"context"

	"github.com/vytor/likescenter/internal/models"
)

// Source is the remote side of the likes feed. Errors are opaque: callers
// must not inspect them beyond reporting.
type Source interface {
	// FetchPage returns up to limit items starting at cursor; a nil cursor
	// starts from the beginning.
	FetchPage(ctx context.Context, limit int, cursor *string) (models.Page, error)
	FetchFeatureFlag(ctx context.Context) (bool, error)
	PerformAction(ctx context.Context, id string, action models.Action) error
}

var (
	_ Source = (*Client)(nil)
	_ Source = (*MockSource)(nil)
)
