package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/likescenter/internal/errors"
	"github.com/vytor/likescenter/internal/models"
	"github.com/vytor/likescenter/internal/repository/sqlite"
	"github.com/vytor/likescenter/internal/store"
	"github.com/vytor/likescenter/internal/testutil"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	db := testutil.NewTestDB(t)
	t.Cleanup(func() { db.Close() })
	return store.New(sqlite.NewProfileRepository(db))
}

func TestStore_UpsertOrdersNewestFirst(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertBatch(ctx, testutil.ProfileData(0, 20)))

	profiles, err := s.Query(ctx, models.StatusIncoming)
	require.NoError(t, err)
	require.Len(t, profiles, 20)
	for i := 1; i < len(profiles); i++ {
		assert.True(t, profiles[i-1].CreatedAt.After(profiles[i].CreatedAt), "profiles must be ordered by createdAt desc")
	}
	assert.Equal(t, uint64(1), s.Version())
}

func TestStore_UpsertIdempotentAndStatusIsolated(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertBatch(ctx, testutil.ProfileData(0, 3)))
	_, err := s.UpdateStatus(ctx, "user_1", models.StatusMutual)
	require.NoError(t, err)

	again := testutil.ProfileData(0, 3)
	again[1].Name = "Latest"
	require.NoError(t, s.UpsertBatch(ctx, again))
	require.NoError(t, s.UpsertBatch(ctx, again))

	p, err := s.Get(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusMutual, p.Status)
	assert.Equal(t, "Latest", p.Name)

	n, err := s.Count(ctx, models.StatusIncoming)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestStore_InvalidBatchIsRejectedWhole(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	items := testutil.ProfileData(0, 3)
	items[2].ID = ""

	err := s.UpsertBatch(ctx, items)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeBatchPersist, errors.CodeOf(err))

	n, err := s.Count(ctx, models.StatusIncoming)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, s.Version())
}

func TestStore_AcceptsSparseRemoteFields(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	items := testutil.ProfileData(0, 3)
	items[1].Name = ""
	items[2].PhotoURL = "/avatars/2.png"
	require.NoError(t, s.UpsertBatch(ctx, items))

	profiles, err := s.Query(ctx, models.StatusIncoming)
	require.NoError(t, err)
	require.Equal(t, []string{"user_0", "user_1", "user_2"}, testutil.IDs(profiles))
	assert.Empty(t, profiles[1].Name)
	assert.Equal(t, "/avatars/2.png", profiles[2].PhotoURL)
}

func TestStore_EmptyBatchIsNoop(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.UpsertBatch(context.Background(), nil))
	assert.Zero(t, s.Version())
}

func TestStore_UpdateStatus(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertBatch(ctx, testutil.ProfileData(0, 1)))

	prior, err := s.UpdateStatus(ctx, "user_0", models.StatusPassed)
	require.NoError(t, err)
	assert.Equal(t, models.StatusIncoming, prior)

	_, err = s.UpdateStatus(ctx, "ghost", models.StatusPassed)
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, uint64(2), s.Version(), "a miss is not a commit")

	_, err = s.UpdateStatus(ctx, "user_0", models.Status(9))
	assert.Equal(t, errors.ErrCodeValidation, errors.CodeOf(err))
}

func TestStore_QueryObservesPriorWrite(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertBatch(ctx, testutil.ProfileData(0, 2)))

	_, err := s.UpdateStatus(ctx, "user_0", models.StatusMutual)
	require.NoError(t, err)

	mutual, err := s.Query(ctx, models.StatusMutual)
	require.NoError(t, err)
	assert.Equal(t, []string{"user_0"}, testutil.IDs(mutual))
}
