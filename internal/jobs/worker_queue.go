package jobs

import (
	"github.com/vytor/likescenter/internal/errors"
	"github.com/vytor/likescenter/internal/models"
	"github.com/vytor/likescenter/internal/worker"
)

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	pool   *worker.Pool
	syncer worker.Syncer
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(pool *worker.Pool, syncer worker.Syncer) JobQueue {
	return &WorkerQueue{pool: pool, syncer: syncer}
}

func (q *WorkerQueue) EnqueueRefresh(onDone func(error)) error {
	return q.pool.Submit(&worker.RefreshJob{Syncer: q.syncer, OnDone: onDone})
}

func (q *WorkerQueue) EnqueueLoadMore(onDone func(error)) error {
	return q.pool.Submit(&worker.LoadMoreJob{Syncer: q.syncer, OnDone: onDone})
}

func (q *WorkerQueue) EnqueueAction(id string, action models.Action, onDone func(error)) error {
	if !action.Valid() {
		return errors.NewValidationError("action", "must be like or pass")
	}
	if id == "" {
		return errors.NewValidationError("id", "required")
	}
	return q.pool.Submit(&worker.ActionJob{Syncer: q.syncer, ProfileID: id, Action: action, OnDone: onDone})
}
