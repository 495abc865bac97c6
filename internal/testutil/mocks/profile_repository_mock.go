package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/likescenter/internal/models"
)

// MockProfileRepository is a mock implementation of repository.ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) UpsertBatch(ctx context.Context, items []models.ProfileData) ([]models.Status, error) {
	args := m.Called(ctx, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Status), args.Error(1)
}

func (m *MockProfileRepository) UpdateStatus(ctx context.Context, id string, status models.Status) (models.Status, error) {
	args := m.Called(ctx, id, status)
	return args.Get(0).(models.Status), args.Error(1)
}

func (m *MockProfileRepository) Get(ctx context.Context, id string) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) List(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Profile), args.Error(1)
}

func (m *MockProfileRepository) Count(ctx context.Context, status models.Status) (int, error) {
	args := m.Called(ctx, status)
	return args.Int(0), args.Error(1)
}
