package worker

import (
	"context"

	"github.com/vytor/likescenter/internal/engine"
	"github.com/vytor/likescenter/internal/models"
)

// Syncer is the part of the sync engine that jobs drive.
type Syncer interface {
	Refresh(ctx context.Context) (engine.Result, error)
	LoadMore(ctx context.Context) (engine.Result, error)
	PerformAction(ctx context.Context, id string, action models.Action) error
}

var _ Syncer = (*engine.Engine)(nil)
