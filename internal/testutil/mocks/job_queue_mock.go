package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/vytor/likescenter/internal/models"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueRefresh(onDone func(error)) error {
	args := m.Called(onDone)
	return args.Error(0)
}

func (m *MockJobQueue) EnqueueLoadMore(onDone func(error)) error {
	args := m.Called(onDone)
	return args.Error(0)
}

func (m *MockJobQueue) EnqueueAction(id string, action models.Action, onDone func(error)) error {
	args := m.Called(id, action, onDone)
	return args.Error(0)
}
