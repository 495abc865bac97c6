package worker

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/likescenter/internal/engine"
	"github.com/vytor/likescenter/internal/models"
)

type fakeSyncer struct {
	refreshErr error
	actionErr  error
	actions    []string
	loads      int
}

func (f *fakeSyncer) Refresh(context.Context) (engine.Result, error) {
	return engine.Result{Fetched: 20, HasMore: true}, f.refreshErr
}

func (f *fakeSyncer) LoadMore(context.Context) (engine.Result, error) {
	f.loads++
	return engine.Result{Skipped: true}, nil
}

func (f *fakeSyncer) PerformAction(_ context.Context, id string, action models.Action) error {
	f.actions = append(f.actions, string(action)+":"+id)
	return f.actionErr
}

func TestJobs_ReportOutcome(t *testing.T) {
	boom := stderrors.New("boom")
	s := &fakeSyncer{refreshErr: boom}

	var got []error
	onDone := func(err error) { got = append(got, err) }

	assert.ErrorIs(t, (&RefreshJob{Syncer: s, OnDone: onDone}).Run(context.Background()), boom)
	require.NoError(t, (&LoadMoreJob{Syncer: s, OnDone: onDone}).Run(context.Background()))
	require.NoError(t, (&ActionJob{Syncer: s, ProfileID: "user_1", Action: models.ActionLike, OnDone: onDone}).Run(context.Background()))

	require.Len(t, got, 3)
	assert.ErrorIs(t, got[0], boom)
	assert.NoError(t, got[1])
	assert.NoError(t, got[2])
	assert.Equal(t, 1, s.loads)
	assert.Equal(t, []string{"like:user_1"}, s.actions)
}

func TestJobs_Names(t *testing.T) {
	assert.Equal(t, "refresh", (&RefreshJob{}).Name())
	assert.Equal(t, "load_more", (&LoadMoreJob{}).Name())
	assert.Equal(t, "action_pass", (&ActionJob{Action: models.ActionPass}).Name())
}

func TestActionJob_WithoutCallback(t *testing.T) {
	boom := stderrors.New("remote down")
	s := &fakeSyncer{actionErr: boom}
	err := (&ActionJob{Syncer: s, ProfileID: "user_2", Action: models.ActionPass}).Run(context.Background())
	assert.ErrorIs(t, err, boom)
}
