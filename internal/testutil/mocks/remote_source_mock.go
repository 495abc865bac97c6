package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/likescenter/internal/models"
)

// MockRemoteSource is a mock implementation of remote.Source
type MockRemoteSource struct {
	mock.Mock
}

func (m *MockRemoteSource) FetchPage(ctx context.Context, limit int, cursor *string) (models.Page, error) {
	args := m.Called(ctx, limit, cursor)
	return args.Get(0).(models.Page), args.Error(1)
}

func (m *MockRemoteSource) FetchFeatureFlag(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockRemoteSource) PerformAction(ctx context.Context, id string, action models.Action) error {
	args := m.Called(ctx, id, action)
	return args.Error(0)
}

// NilCursor matches a nil *string argument.
var NilCursor = mock.MatchedBy(func(c *string) bool { return c == nil })

// Cursor matches a *string argument pointing at want.
func Cursor(want string) interface{} {
	return mock.MatchedBy(func(c *string) bool { return c != nil && *c == want })
}
