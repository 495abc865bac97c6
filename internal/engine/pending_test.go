package engine

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/likescenter/internal/errors"
	"github.com/vytor/likescenter/internal/models"
)

type fakeWriter struct {
	statuses map[string]models.Status
	err      error
	writes   []models.Status
}

func (w *fakeWriter) UpdateStatus(_ context.Context, id string, status models.Status) (models.Status, error) {
	if w.err != nil {
		return 0, w.err
	}
	prior, ok := w.statuses[id]
	if !ok {
		return 0, errors.ErrNotFound
	}
	w.statuses[id] = status
	w.writes = append(w.writes, status)
	return prior, nil
}

func TestPendingAction_Commit(t *testing.T) {
	w := &fakeWriter{statuses: map[string]models.Status{"a": models.StatusIncoming}}
	pa, err := NewPendingAction("a", models.ActionLike)
	require.NoError(t, err)
	assert.Equal(t, models.StatusMutual, pa.Target)

	require.NoError(t, pa.Apply(context.Background(), w))
	assert.True(t, pa.Found)
	assert.Equal(t, models.StatusIncoming, pa.Prior)

	require.NoError(t, pa.Commit())
	assert.Equal(t, ActionCommitted, pa.State)
	assert.ErrorIs(t, pa.Commit(), ErrActionResolved)
	assert.ErrorIs(t, pa.Rollback(context.Background(), w), ErrActionResolved)
	assert.Equal(t, []models.Status{models.StatusMutual}, w.writes)
}

func TestPendingAction_RollbackIgnoresPrior(t *testing.T) {
	w := &fakeWriter{statuses: map[string]models.Status{"a": models.StatusPassed}}
	pa, err := NewPendingAction("a", models.ActionLike)
	require.NoError(t, err)

	require.NoError(t, pa.Apply(context.Background(), w))
	assert.Equal(t, models.StatusPassed, pa.Prior)

	require.NoError(t, pa.Rollback(context.Background(), w))
	assert.Equal(t, ActionRolledBack, pa.State)
	assert.Equal(t, models.StatusIncoming, w.statuses["a"])
	assert.ErrorIs(t, pa.Commit(), ErrActionResolved)
}

func TestPendingAction_NotFound(t *testing.T) {
	w := &fakeWriter{statuses: map[string]models.Status{}}
	pa, err := NewPendingAction("missing", models.ActionPass)
	require.NoError(t, err)

	require.NoError(t, pa.Apply(context.Background(), w))
	assert.False(t, pa.Found)
	require.NoError(t, pa.Rollback(context.Background(), w))
	assert.Empty(t, w.writes)
}

func TestPendingAction_WriteFailure(t *testing.T) {
	boom := stderrors.New("disk full")
	w := &fakeWriter{err: boom}
	pa, err := NewPendingAction("a", models.ActionPass)
	require.NoError(t, err)

	assert.ErrorIs(t, pa.Apply(context.Background(), w), boom)
	assert.ErrorIs(t, pa.Rollback(context.Background(), w), boom)
	assert.Equal(t, ActionRolledBack, pa.State)
}

func TestNewPendingAction_Validation(t *testing.T) {
	_, err := NewPendingAction("", models.ActionLike)
	assert.Equal(t, errors.ErrCodeValidation, errors.CodeOf(err))

	_, err = NewPendingAction("a", models.Action("wink"))
	assert.Equal(t, errors.ErrCodeValidation, errors.CodeOf(err))
}

func TestActionState_String(t *testing.T) {
	assert.Equal(t, "pending", ActionPending.String())
	assert.Equal(t, "committed", ActionCommitted.String())
	assert.Equal(t, "rolled_back", ActionRolledBack.String())
}
