package remote

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/vytor/likescenter/internal/logger"
	"github.com/vytor/likescenter/internal/models"
)

// MockTotal is the size of the feed served by MockSource.
const MockTotal = 100

// MockSource is an in-process Source serving a fixed feed of MockTotal
// profiles. The cursor is the decimal offset of the next item.
type MockSource struct {
	base    time.Time
	latency time.Duration

	mu         sync.Mutex
	flag       bool
	actionErr  error
	fetchErr   error
	fetchCalls int
	actions    []MockAction
}

// MockAction records one PerformAction call.
type MockAction struct {
	ID     string
	Action models.Action
}

// NewMockSource creates a mock whose newest item was created at base. Item i
// is i hours older.
func NewMockSource(base time.Time, latency time.Duration) *MockSource {
	return &MockSource{base: base, latency: latency, flag: true}
}

// FailFetches makes subsequent fetches fail with err; nil restores success.
func (m *MockSource) FailFetches(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchErr = err
}

// FailActions makes subsequent actions fail with err; nil restores success.
func (m *MockSource) FailActions(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actionErr = err
}

// SetFlag sets the value returned by FetchFeatureFlag.
func (m *MockSource) SetFlag(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flag = enabled
}

// FetchCalls returns the number of FetchPage calls so far.
func (m *MockSource) FetchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetchCalls
}

// Actions returns the actions received so far.
func (m *MockSource) Actions() []MockAction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockAction(nil), m.actions...)
}

func (m *MockSource) FetchPage(ctx context.Context, limit int, cursor *string) (models.Page, error) {
	if err := m.wait(ctx); err != nil {
		return models.Page{}, err
	}

	m.mu.Lock()
	m.fetchCalls++
	fetchErr := m.fetchErr
	m.mu.Unlock()
	if fetchErr != nil {
		return models.Page{}, fetchErr
	}

	start := 0
	if cursor != nil {
		// An unparseable cursor restarts from the top.
		if n, err := strconv.Atoi(*cursor); err == nil && n > 0 {
			start = n
		}
	}
	if start >= MockTotal {
		return models.Page{Items: []models.ProfileData{}}, nil
	}
	end := min(start+limit, MockTotal)

	items := make([]models.ProfileData, 0, end-start)
	for i := start; i < end; i++ {
		items = append(items, models.ProfileData{
			ID:        fmt.Sprintf("user_%d", i),
			Name:      fmt.Sprintf("User %d", i),
			PhotoURL:  fmt.Sprintf("https://robohash.org/%d.png?set=set2", i),
			CreatedAt: m.base.Add(-time.Duration(i) * time.Hour),
		})
	}

	page := models.Page{Items: items}
	if end < MockTotal {
		next := strconv.Itoa(end)
		page.NextCursor = &next
	}
	logger.FromContext(ctx).WithPrefix("mock_remote").Debug("served items %d..%d", start, end-1)
	return page, nil
}

func (m *MockSource) FetchFeatureFlag(ctx context.Context) (bool, error) {
	if err := m.wait(ctx); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flag, nil
}

func (m *MockSource) PerformAction(ctx context.Context, id string, action models.Action) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = append(m.actions, MockAction{ID: id, Action: action})
	return m.actionErr
}

func (m *MockSource) wait(ctx context.Context) error {
	if m.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(m.latency)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
