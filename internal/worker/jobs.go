package worker

import (
	"context"

	"github.com/vytor/likescenter/internal/logger"
	"github.com/vytor/likescenter/internal/models"
)

// RefreshJob reloads the first page of likes.
type RefreshJob struct {
	Syncer Syncer
	// OnDone, when set, receives the job's outcome.
	OnDone func(error)
}

func (j *RefreshJob) Name() string { return "refresh" }

func (j *RefreshJob) Run(ctx context.Context) error {
	res, err := j.Syncer.Refresh(ctx)
	if err == nil {
		logSync(ctx, res.Skipped, res.Fetched, res.HasMore)
	}
	return done(j.OnDone, err)
}

// LoadMoreJob fetches the next page of likes.
type LoadMoreJob struct {
	Syncer Syncer
	OnDone func(error)
}

func (j *LoadMoreJob) Name() string { return "load_more" }

func (j *LoadMoreJob) Run(ctx context.Context) error {
	res, err := j.Syncer.LoadMore(ctx)
	if err == nil {
		logSync(ctx, res.Skipped, res.Fetched, res.HasMore)
	}
	return done(j.OnDone, err)
}

// ActionJob likes or passes one profile.
type ActionJob struct {
	Syncer    Syncer
	ProfileID string
	Action    models.Action
	OnDone    func(error)
}

func (j *ActionJob) Name() string { return "action_" + string(j.Action) }

func (j *ActionJob) Run(ctx context.Context) error {
	logger.FromContext(ctx).Debug("performing %s on %s", j.Action, j.ProfileID)
	return done(j.OnDone, j.Syncer.PerformAction(ctx, j.ProfileID, j.Action))
}

func logSync(ctx context.Context, skipped bool, fetched int, hasMore bool) {
	log := logger.FromContext(ctx)
	if skipped {
		log.Debug("skipped, another fetch in flight or nothing to load")
		return
	}
	log.Debug("fetched %d, has_more=%t", fetched, hasMore)
}

func done(cb func(error), err error) error {
	if cb != nil {
		cb(err)
	}
	return err
}
