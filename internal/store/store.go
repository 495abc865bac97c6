// Package store is the local source of truth for cached profiles. All writes
// go through Store, which serializes them and fans the results out to live
// subscriptions.
package store

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/vytor/likescenter/internal/errors"
	"github.com/vytor/likescenter/internal/logger"
	"github.com/vytor/likescenter/internal/models"
	"github.com/vytor/likescenter/internal/repository"
)

// Store wraps a ProfileRepository with single-writer discipline and change
// notification.
//
// Writes hold the write lock until every affected subscription has been
// handed its new snapshot, so commits and deliveries share one total order.
// Reads hold the read lock and never observe a half-published commit.
type Store struct {
	repo     repository.ProfileRepository
	validate *validator.Validate
	notifier *Notifier

	mu      sync.RWMutex
	version uint64
}

// New creates a Store over repo.
func New(repo repository.ProfileRepository) *Store {
	s := &Store{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	s.notifier = newNotifier(s)
	return s
}

// Notifier returns the store's change notifier.
func (s *Store) Notifier() *Notifier {
	return s.notifier
}

// UpsertBatch validates and applies items atomically. New ids start as
// incoming; existing ids keep their status. On any failure nothing is
// written and nothing is published.
func (s *Store) UpsertBatch(ctx context.Context, items []models.ProfileData) error {
	log := logger.FromContext(ctx).WithPrefix("store")
	if len(items) == 0 {
		log.Debug("empty batch, nothing to upsert")
		return nil
	}

	for i := range items {
		if err := s.validate.StructCtx(ctx, items[i]); err != nil {
			log.Warn("rejecting batch of %d: item %d (%s) invalid: %v", len(items), i, items[i].ID, err)
			return errors.NewBatchPersistError(len(items), err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	touched, err := s.repo.UpsertBatch(ctx, items)
	if err != nil {
		log.Error("batch of %d aborted: %v", len(items), err)
		return errors.NewBatchPersistError(len(items), err)
	}

	s.version++
	log.Debug("committed batch: size=%d, version=%d", len(items), s.version)
	s.notifier.publish(ctx, s.version, touched)
	return nil
}

// UpdateStatus sets the status of id and returns the previous one. It returns
// errors.ErrNotFound, and publishes nothing, when id is absent.
func (s *Store) UpdateStatus(ctx context.Context, id string, status models.Status) (models.Status, error) {
	if !status.Valid() {
		return 0, errors.NewValidationError("status", "unknown status")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prior, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return 0, err
	}

	s.version++
	logger.FromContext(ctx).WithPrefix("store").Debug("status %s: %s -> %s, version=%d", id, prior, status, s.version)
	s.notifier.publish(ctx, s.version, repository.DistinctStatuses([]models.Status{prior, status}))
	return prior, nil
}

// Query returns every profile with the given status, newest first.
func (s *Store) Query(ctx context.Context, status models.Status) ([]models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return repository.ListAll(ctx, s.repo, status)
}

func (s *Store) Get(ctx context.Context, id string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repo.Get(ctx, id)
}

func (s *Store) Count(ctx context.Context, status models.Status) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repo.Count(ctx, status)
}

// Version is the number of commits applied since the store was created.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Subscribe registers a live query on status. The current snapshot is
// delivered before Subscribe returns. The subscription ends when ctx is done
// or Unsubscribe is called.
func (s *Store) Subscribe(ctx context.Context, status models.Status) (*Subscription, error) {
	return s.notifier.subscribe(ctx, status)
}

// snapshot reads the result set for status. Callers hold s.mu.
func (s *Store) snapshot(ctx context.Context, status models.Status) (models.Snapshot, error) {
	profiles, err := repository.ListAll(ctx, s.repo, status)
	if err != nil {
		return models.Snapshot{}, err
	}
	return models.Snapshot{Seq: s.version, Filter: status, Profiles: profiles}, nil
}
