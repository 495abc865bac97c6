// Package unblur tracks the time-boxed privilege that reveals blurred
// profiles. The only durable state is the expiry instant; whether the window
// is active is always derived from it and the caller's clock.
package unblur

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vytor/likescenter/internal/logger"
	"github.com/vytor/likescenter/internal/models"
	"github.com/vytor/likescenter/internal/repository"
)

// StorageKey is the metadata key holding the expiry.
const StorageKey = "unblur_expires_at"

// DefaultDuration is the length of one unblur window.
const DefaultDuration = 120 * time.Second

// Window is the unblur state machine: inactive, or active until an expiry.
type Window struct {
	repo     repository.MetadataRepository
	clock    func() time.Time
	duration time.Duration

	mu        sync.RWMutex
	expiresAt *time.Time
}

// Option configures a Window.
type Option func(*Window)

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(w *Window) { w.clock = clock }
}

// WithDuration overrides DefaultDuration.
func WithDuration(d time.Duration) Option {
	return func(w *Window) {
		if d > 0 {
			w.duration = d
		}
	}
}

// New loads the persisted expiry from repo. An unreadable stored value is
// treated as no window at all.
func New(ctx context.Context, repo repository.MetadataRepository, opts ...Option) (*Window, error) {
	w := &Window{repo: repo, clock: time.Now, duration: DefaultDuration}
	for _, opt := range opts {
		opt(w)
	}

	log := logger.FromContext(ctx).WithPrefix("unblur")
	raw, err := repo.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("load unblur window: %w", err)
	}
	if raw == nil {
		log.Debug("no stored unblur window")
		return w, nil
	}

	exp, err := time.Parse(time.RFC3339Nano, string(raw))
	if err != nil {
		log.Warn("ignoring unreadable unblur expiry %q: %v", string(raw), err)
		return w, nil
	}
	w.expiresAt = &exp
	log.Debug("loaded unblur window expiring at %s", exp.Format(time.RFC3339))
	return w, nil
}

// Duration is the length of a window started by Activate.
func (w *Window) Duration() time.Duration {
	return w.duration
}

// Activate starts a full window from now, replacing any running one. The
// expiry is persisted before it takes effect.
func (w *Window) Activate(ctx context.Context) (models.UnblurState, error) {
	now := w.clock()
	exp := now.Add(w.duration).Round(0)

	if err := w.repo.Set(ctx, StorageKey, []byte(exp.UTC().Format(time.RFC3339Nano))); err != nil {
		return models.UnblurState{}, fmt.Errorf("persist unblur window: %w", err)
	}

	w.mu.Lock()
	w.expiresAt = &exp
	w.mu.Unlock()

	logger.FromContext(ctx).WithPrefix("unblur").Info("unblur window active until %s", exp.UTC().Format(time.RFC3339))
	return w.State(now), nil
}

// State evaluates the window at now. It has no side effects.
func (w *Window) State(now time.Time) models.UnblurState {
	w.mu.RLock()
	exp := w.expiresAt
	w.mu.RUnlock()

	if exp == nil || !exp.After(now) {
		return models.UnblurState{}
	}
	e := *exp
	return models.UnblurState{Active: true, ExpiresAt: &e}
}

// Now reads the window's clock.
func (w *Window) Now() time.Time {
	return w.clock()
}

// Current evaluates the window at the window's clock.
func (w *Window) Current() models.UnblurState {
	return w.State(w.clock())
}

// Remaining returns the time left at now, and false when the window is not
// active.
func (w *Window) Remaining(now time.Time) (time.Duration, bool) {
	st := w.State(now)
	if !st.Active {
		return 0, false
	}
	return st.ExpiresAt.Sub(now), true
}

// FormatRemaining renders d as mm:ss, dropping fractional seconds.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
