// Package engine synchronizes the local store with the remote likes feed and
// applies user actions optimistically.
package engine

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vytor/likescenter/internal/errors"
	"github.com/vytor/likescenter/internal/logger"
	"github.com/vytor/likescenter/internal/models"
	"github.com/vytor/likescenter/internal/remote"
	"github.com/vytor/likescenter/internal/store"
)

// DefaultPageSize is the number of items requested per page.
const DefaultPageSize = 20

// Result describes a refresh or load-more call.
type Result struct {
	// Skipped is set when the call was dropped: another fetch was in flight,
	// or there was no further page to load.
	Skipped bool `json:"skipped"`
	Fetched int  `json:"fetched"`
	HasMore bool `json:"has_more"`
}

// Engine drives refresh, load-more and user actions.
//
// Refresh and LoadMore share a single-flight guard: while one runs, any other
// call to either returns immediately with Result.Skipped. Actions are not
// guarded and may run concurrently with fetches and with each other.
type Engine struct {
	store    *store.Store
	source   remote.Source
	pageSize int

	busy atomic.Bool

	mu     sync.Mutex
	cursor *string
}

// Option configures an Engine.
type Option func(*Engine)

// WithPageSize overrides DefaultPageSize.
func WithPageSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.pageSize = n
		}
	}
}

// New creates an Engine writing into st and reading from src.
func New(st *store.Store, src remote.Source, opts ...Option) *Engine {
	e := &Engine{store: st, source: src, pageSize: DefaultPageSize}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Cursor returns the continuation token for the next LoadMore, or nil when
// there is nothing more to load.
func (e *Engine) Cursor() *string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cursor == nil {
		return nil
	}
	c := *e.cursor
	return &c
}

// Busy reports whether a refresh or load-more is in flight.
func (e *Engine) Busy() bool {
	return e.busy.Load()
}

// Refresh fetches the first page and restarts pagination from it.
func (e *Engine) Refresh(ctx context.Context) (Result, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return e.skip(ctx, opRefresh, "busy"), nil
	}
	defer e.busy.Store(false)

	return e.fetch(ctx, opRefresh, nil)
}

// LoadMore fetches the page after the stored cursor. It is a no-op before
// the first Refresh and after the last page.
func (e *Engine) LoadMore(ctx context.Context) (Result, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return e.skip(ctx, opLoadMore, "busy"), nil
	}
	defer e.busy.Store(false)

	cursor := e.Cursor()
	if cursor == nil {
		return e.skip(ctx, opLoadMore, "no more pages"), nil
	}
	return e.fetch(ctx, opLoadMore, cursor)
}

// fetch runs with the busy flag held. The cursor only moves once the page is
// committed, so a failed call leaves both cursor and store as they were.
func (e *Engine) fetch(ctx context.Context, op string, cursor *string) (Result, error) {
	log := logger.FromContext(ctx).WithPrefix("engine").WithField("op", op)
	timer := prometheus.NewTimer(fetchDuration.WithLabelValues(op))
	defer timer.ObserveDuration()

	if cursor != nil {
		log.Debug("fetching page: limit=%d, cursor=%s", e.pageSize, *cursor)
	} else {
		log.Debug("fetching first page: limit=%d", e.pageSize)
	}

	page, err := e.source.FetchPage(ctx, e.pageSize, cursor)
	if err != nil {
		log.Warn("fetch failed: %v", err)
		fetchTotal.WithLabelValues(op, "remote_error").Inc()
		return Result{}, errors.NewRemoteError("fetch page", err)
	}

	if err := e.store.UpsertBatch(ctx, page.Items); err != nil {
		log.Error("failed to persist page of %d: %v", len(page.Items), err)
		fetchTotal.WithLabelValues(op, "persist_error").Inc()
		return Result{}, err
	}

	e.mu.Lock()
	e.cursor = page.NextCursor
	e.mu.Unlock()

	fetchTotal.WithLabelValues(op, "ok").Inc()
	res := Result{Fetched: len(page.Items), HasMore: page.NextCursor != nil}
	log.Info("synced %d profiles, has_more=%t", res.Fetched, res.HasMore)
	return res, nil
}

func (e *Engine) skip(ctx context.Context, op, reason string) Result {
	skippedTotal.WithLabelValues(op).Inc()
	logger.FromContext(ctx).WithPrefix("engine").Debug("%s skipped: %s", op, reason)
	return Result{Skipped: true}
}

// PerformAction applies action to id optimistically, then confirms it with
// the remote source. If the remote call fails the profile is put back to
// incoming and the remote failure is returned.
func (e *Engine) PerformAction(ctx context.Context, id string, action models.Action) error {
	pa, err := NewPendingAction(id, action)
	if err != nil {
		return err
	}

	log := logger.FromContext(ctx).WithPrefix("engine").WithFields(map[string]any{"user_id": id, "action": action})

	if err := pa.Apply(ctx, e.store); err != nil {
		log.Error("optimistic update failed: %v", err)
		actionsTotal.WithLabelValues(string(action), "store_error").Inc()
		return err
	}
	if pa.Found {
		log.Debug("optimistic %s -> %s", pa.Prior, pa.Target)
	}

	remoteErr := e.source.PerformAction(ctx, id, action)
	if remoteErr == nil {
		_ = pa.Commit()
		actionsTotal.WithLabelValues(string(action), pa.State.String()).Inc()
		log.Info("action committed")
		return nil
	}

	log.Warn("remote rejected action, rolling back to %s: %v", pa.RollbackTarget(), remoteErr)
	// The caller's context may be the reason the remote call failed.
	if rbErr := pa.Rollback(context.WithoutCancel(ctx), e.store); rbErr != nil {
		log.Error("rollback failed: %v", rbErr)
		remoteErr = stderrors.Join(remoteErr, rbErr)
	}
	actionsTotal.WithLabelValues(string(action), pa.State.String()).Inc()
	return errors.NewRemoteError("perform action", remoteErr)
}

// Like marks id as mutual.
func (e *Engine) Like(ctx context.Context, id string) error {
	return e.PerformAction(ctx, id, models.ActionLike)
}

// Pass marks id as passed.
func (e *Engine) Pass(ctx context.Context, id string) error {
	return e.PerformAction(ctx, id, models.ActionPass)
}
