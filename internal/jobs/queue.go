package jobs

import "github.com/vytor/likescenter/internal/models"

// JobQueue provides an abstraction for enqueueing background sync work.
// onDone may be nil; when set it receives the job's outcome from the worker.
type JobQueue interface {
	EnqueueRefresh(onDone func(error)) error
	EnqueueLoadMore(onDone func(error)) error
	EnqueueAction(id string, action models.Action, onDone func(error)) error
}
