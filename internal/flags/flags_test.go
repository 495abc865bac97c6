package flags_test

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/likescenter/internal/flags"
	"github.com/vytor/likescenter/internal/testutil/mocks"
)

func TestCache_DisabledUntilFirstSuccess(t *testing.T) {
	src := new(mocks.MockRemoteSource)
	src.On("FetchFeatureFlag", mock.Anything).Return(false, stderrors.New("offline")).Once()
	src.On("FetchFeatureFlag", mock.Anything).Return(true, nil).Once()

	c := flags.New(src)
	enabled, err := c.Enabled(context.Background())
	require.Error(t, err)
	assert.False(t, enabled)

	enabled, err = c.Enabled(context.Background())
	require.NoError(t, err)
	assert.True(t, enabled)

	// Cached from now on.
	enabled, err = c.Enabled(context.Background())
	require.NoError(t, err)
	assert.True(t, enabled)
	src.AssertNumberOfCalls(t, "FetchFeatureFlag", 2)
}

func TestCache_FailedRefreshKeepsLastValue(t *testing.T) {
	src := new(mocks.MockRemoteSource)
	src.On("FetchFeatureFlag", mock.Anything).Return(true, nil).Once()
	src.On("FetchFeatureFlag", mock.Anything).Return(false, stderrors.New("offline")).Once()

	c := flags.New(src)
	_, err := c.Enabled(context.Background())
	require.NoError(t, err)

	enabled, err := c.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, enabled)
}

func TestCache_TTL(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	src := new(mocks.MockRemoteSource)
	src.On("FetchFeatureFlag", mock.Anything).Return(true, nil).Once()
	src.On("FetchFeatureFlag", mock.Anything).Return(false, nil).Once()

	c := flags.New(src, flags.WithTTL(time.Minute), flags.WithClock(func() time.Time { return now }))

	enabled, _ := c.Enabled(context.Background())
	assert.True(t, enabled)
	now = now.Add(30 * time.Second)
	enabled, _ = c.Enabled(context.Background())
	assert.True(t, enabled)
	now = now.Add(time.Minute)
	enabled, _ = c.Enabled(context.Background())
	assert.False(t, enabled)
	src.AssertExpectations(t)
}

func TestCache_ConcurrentMissesShareOneFetch(t *testing.T) {
	release := make(chan struct{})
	src := new(mocks.MockRemoteSource)
	src.On("FetchFeatureFlag", mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(true, nil)

	c := flags.New(src)

	const callers = 10
	var wg sync.WaitGroup
	results := make(chan bool, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			enabled, err := c.Enabled(context.Background())
			assert.NoError(t, err)
			results <- enabled
		}()
	}

	// Give every caller time to join the in-flight fetch.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	for enabled := range results {
		assert.True(t, enabled)
	}
	src.AssertNumberOfCalls(t, "FetchFeatureFlag", 1)
}

func TestCache_SharedFetchOutlivesCancelledCaller(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var startOnce sync.Once

	src := new(mocks.MockRemoteSource)
	src.On("FetchFeatureFlag", mock.Anything).Run(func(args mock.Arguments) {
		startOnce.Do(func() { close(started) })
		<-release
		assert.NoError(t, args.Get(0).(context.Context).Err(), "fetch must not see the caller's cancellation")
	}).Return(true, nil)

	c := flags.New(src)
	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := c.Refresh(ctx)
		first <- err
	}()
	<-started

	second := make(chan bool, 1)
	go func() {
		v, err := c.Refresh(context.Background())
		assert.NoError(t, err)
		second <- v
	}()

	cancel()
	require.ErrorIs(t, <-first, context.Canceled)
	close(release)

	select {
	case v := <-second:
		assert.True(t, v)
	case <-time.After(2 * time.Second):
		t.Fatal("waiter never got the shared result")
	}

	enabled, err := c.Enabled(context.Background())
	require.NoError(t, err)
	assert.True(t, enabled)
}
