package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/likescenter/internal/engine"
	"github.com/vytor/likescenter/internal/errors"
	"github.com/vytor/likescenter/internal/models"
	"github.com/vytor/likescenter/internal/remote"
	"github.com/vytor/likescenter/internal/repository/sqlite"
	"github.com/vytor/likescenter/internal/store"
	"github.com/vytor/likescenter/internal/testutil"
	"github.com/vytor/likescenter/internal/worker"
)

func wait(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("job did not finish")
		return nil
	}
}

func TestWorkerQueue_RunsEngineJobs(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Close()
	st := store.New(sqlite.NewProfileRepository(db))
	eng := engine.New(st, remote.NewMockSource(testutil.BaseTime, 0))

	pool := worker.NewPool(1, 8)
	pool.Start(context.Background())
	defer pool.Stop()
	q := NewWorkerQueue(pool, eng)

	done := make(chan error, 1)
	report := func(err error) { done <- err }

	require.NoError(t, q.EnqueueRefresh(report))
	require.NoError(t, wait(t, done))
	require.NoError(t, q.EnqueueLoadMore(report))
	require.NoError(t, wait(t, done))
	require.NoError(t, q.EnqueueAction("user_30", models.ActionLike, report))
	require.NoError(t, wait(t, done))

	n, err := st.Count(context.Background(), models.StatusIncoming)
	require.NoError(t, err)
	assert.Equal(t, 39, n)
	p, err := st.Get(context.Background(), "user_30")
	require.NoError(t, err)
	assert.Equal(t, models.StatusMutual, p.Status)
}

func TestWorkerQueue_RejectsBadAction(t *testing.T) {
	pool := worker.NewPool(1, 1)
	q := NewWorkerQueue(pool, nil)

	err := q.EnqueueAction("user_1", models.Action("nope"), nil)
	assert.Equal(t, errors.ErrCodeValidation, errors.CodeOf(err))
	err = q.EnqueueAction("", models.ActionLike, nil)
	assert.Equal(t, errors.ErrCodeValidation, errors.CodeOf(err))
	assert.Zero(t, pool.QueueSize())
}

func TestWorkerQueue_StoppedPool(t *testing.T) {
	pool := worker.NewPool(1, 1)
	pool.Start(context.Background())
	pool.Stop()

	err := NewWorkerQueue(pool, nil).EnqueueRefresh(nil)
	assert.ErrorIs(t, err, worker.ErrPoolStopped)
}
