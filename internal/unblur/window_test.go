package unblur

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/likescenter/internal/repository/sqlite"
	"github.com/vytor/likescenter/internal/testutil"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestWindow_InactiveByDefault(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Close()

	w, err := New(context.Background(), sqlite.NewMetadataRepository(db))
	require.NoError(t, err)

	st := w.Current()
	assert.False(t, st.Active)
	assert.Nil(t, st.ExpiresAt)
	_, ok := w.Remaining(time.Now())
	assert.False(t, ok)
}

func TestWindow_ExpiresAfterDuration(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Close()
	t0 := testutil.BaseTime
	clock := &fakeClock{now: t0}

	w, err := New(context.Background(), sqlite.NewMetadataRepository(db), WithClock(clock.Now))
	require.NoError(t, err)

	st, err := w.Activate(context.Background())
	require.NoError(t, err)
	require.True(t, st.Active)
	assert.True(t, st.ExpiresAt.Equal(t0.Add(120*time.Second)))

	at60 := w.State(t0.Add(60 * time.Second))
	assert.True(t, at60.Active)
	assert.True(t, at60.ExpiresAt.Equal(t0.Add(120*time.Second)))

	assert.True(t, w.State(t0.Add(120*time.Second-time.Nanosecond)).Active)
	assert.False(t, w.State(t0.Add(120*time.Second)).Active)

	at130 := w.State(t0.Add(130 * time.Second))
	assert.False(t, at130.Active)
	assert.Nil(t, at130.ExpiresAt)
}

func TestWindow_ReactivateResetsFullWindow(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Close()
	t0 := testutil.BaseTime
	clock := &fakeClock{now: t0}

	w, err := New(context.Background(), sqlite.NewMetadataRepository(db), WithClock(clock.Now))
	require.NoError(t, err)

	_, err = w.Activate(context.Background())
	require.NoError(t, err)
	clock.Advance(90 * time.Second)
	st, err := w.Activate(context.Background())
	require.NoError(t, err)

	assert.True(t, st.ExpiresAt.Equal(t0.Add(210*time.Second)))
	left, ok := w.Remaining(clock.Now())
	require.True(t, ok)
	assert.Equal(t, 120*time.Second, left)
}

func TestWindow_SurvivesRestart(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Close()
	repo := sqlite.NewMetadataRepository(db)
	t0 := testutil.BaseTime
	clock := &fakeClock{now: t0}

	w, err := New(context.Background(), repo, WithClock(clock.Now))
	require.NoError(t, err)
	_, err = w.Activate(context.Background())
	require.NoError(t, err)

	clock.Advance(30 * time.Second)
	reopened, err := New(context.Background(), repo, WithClock(clock.Now))
	require.NoError(t, err)

	st := reopened.Current()
	require.True(t, st.Active)
	assert.True(t, st.ExpiresAt.Equal(t0.Add(120*time.Second)))
}

func TestWindow_UnreadableValueIsInactive(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Close()
	repo := sqlite.NewMetadataRepository(db)
	require.NoError(t, repo.Set(context.Background(), StorageKey, []byte("not a time")))

	w, err := New(context.Background(), repo)
	require.NoError(t, err)
	assert.False(t, w.Current().Active)
}

func TestWindow_CustomDuration(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Close()
	clock := &fakeClock{now: testutil.BaseTime}

	w, err := New(context.Background(), sqlite.NewMetadataRepository(db), WithClock(clock.Now), WithDuration(5*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, w.Duration())

	_, err = w.Activate(context.Background())
	require.NoError(t, err)
	clock.Advance(5 * time.Second)
	assert.False(t, w.Current().Active)
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{120 * time.Second, "02:00"},
		{119*time.Second + 900*time.Millisecond, "01:59"},
		{61 * time.Second, "01:01"},
		{9 * time.Second, "00:09"},
		{0, "00:00"},
		{-time.Second, "00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRemaining(tt.d))
		})
	}
}
