package store

import (
	"context"
	stderrors "errors"
	"slices"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vytor/likescenter/internal/errors"
	"github.com/vytor/likescenter/internal/logger"
	"github.com/vytor/likescenter/internal/models"
)

// ErrSubscriptionClosed is returned when switching the filter of a
// subscription that has been unsubscribed.
var ErrSubscriptionClosed = stderrors.New("subscription closed")

var (
	activeSubscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "likescenter_store_subscriptions",
		Help: "Live query subscriptions currently registered.",
	})
	snapshotsDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "likescenter_store_snapshots_total",
		Help: "Snapshots handed to subscriptions, by filter and whether an undelivered one was replaced.",
	}, []string{"filter", "coalesced"})
)

// Notifier fans committed writes out to live subscriptions.
//
// Lock order is Store.mu then Notifier.mu. publish runs with the store's
// write lock held; subscribe and SwitchFilter take the store's read lock
// before reading their snapshot so they can never interleave with a commit.
type Notifier struct {
	store *Store

	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

func newNotifier(s *Store) *Notifier {
	return &Notifier{store: s, subs: make(map[*Subscription]struct{})}
}

// Len returns the number of active subscriptions.
func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}

func (n *Notifier) subscribe(ctx context.Context, status models.Status) (*Subscription, error) {
	if !status.Valid() {
		return nil, errors.NewValidationError("status", "unknown status")
	}

	n.store.mu.RLock()
	snap, err := n.store.snapshot(ctx, status)
	if err != nil {
		n.store.mu.RUnlock()
		return nil, err
	}

	sub := &Subscription{n: n, filter: status, ch: make(chan models.Snapshot, 1)}
	n.mu.Lock()
	n.subs[sub] = struct{}{}
	sub.deliver(snap)
	n.mu.Unlock()
	n.store.mu.RUnlock()

	activeSubscriptions.Inc()
	logger.FromContext(ctx).WithPrefix("notifier").Debug("subscribed: filter=%s, seq=%d", status, snap.Seq)

	stop := context.AfterFunc(ctx, sub.Unsubscribe)
	n.mu.Lock()
	if sub.closed {
		n.mu.Unlock()
		stop()
		return sub, nil
	}
	sub.stop = stop
	n.mu.Unlock()
	return sub, nil
}

// publish re-reads each affected filter once and delivers the result to every
// subscription on it. Callers hold the store's write lock.
func (n *Notifier) publish(ctx context.Context, version uint64, affected []models.Status) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.subs) == 0 || len(affected) == 0 {
		return
	}

	targets := make(map[models.Status][]*Subscription)
	for sub := range n.subs {
		if slices.Contains(affected, sub.filter) {
			targets[sub.filter] = append(targets[sub.filter], sub)
		}
	}

	// The commit already happened; a caller giving up must not cost the
	// subscribers their update.
	ctx = context.WithoutCancel(ctx)
	log := logger.FromContext(ctx).WithPrefix("notifier")

	for _, status := range affected {
		subs := targets[status]
		if len(subs) == 0 {
			continue
		}
		snap, err := n.store.snapshot(ctx, status)
		if err != nil {
			log.Error("failed to read snapshot for %s at version %d: %v", status, version, err)
			continue
		}
		for _, sub := range subs {
			sub.deliver(snap)
		}
		log.Debug("published %s (%d profiles) to %d subscribers, version=%d", status, len(snap.Profiles), len(subs), version)
	}
}

// Subscription is a live, filter-scoped view of the store. Snapshots arrive
// on C in commit order; a consumer that falls behind only ever sees the most
// recent one.
type Subscription struct {
	n  *Notifier
	ch chan models.Snapshot

	// Guarded by n.mu.
	filter models.Status
	closed bool
	stop   func() bool
}

// C returns the delivery channel. It is closed by Unsubscribe.
func (s *Subscription) C() <-chan models.Snapshot {
	return s.ch
}

// Filter returns the status the subscription currently follows.
func (s *Subscription) Filter() models.Status {
	s.n.mu.Lock()
	defer s.n.mu.Unlock()
	return s.filter
}

// SwitchFilter retargets the subscription. Any undelivered snapshot of the
// old filter is dropped and the new filter's current snapshot is delivered;
// nothing from the old filter is delivered afterwards.
func (s *Subscription) SwitchFilter(ctx context.Context, status models.Status) error {
	if !status.Valid() {
		return errors.NewValidationError("status", "unknown status")
	}

	st := s.n.store
	st.mu.RLock()
	defer st.mu.RUnlock()

	snap, err := st.snapshot(ctx, status)
	if err != nil {
		return err
	}

	s.n.mu.Lock()
	defer s.n.mu.Unlock()
	if s.closed {
		return ErrSubscriptionClosed
	}

	select {
	case <-s.ch:
	default:
	}
	prev := s.filter
	s.filter = status
	s.deliver(snap)

	logger.FromContext(ctx).WithPrefix("notifier").Debug("switched filter %s -> %s, seq=%d", prev, status, snap.Seq)
	return nil
}

// Unsubscribe stops delivery and closes C. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.n.mu.Lock()
	if s.closed {
		s.n.mu.Unlock()
		return
	}
	s.closed = true
	delete(s.n.subs, s)
	close(s.ch)
	stop := s.stop
	s.n.mu.Unlock()

	activeSubscriptions.Dec()
	if stop != nil {
		stop()
	}
}

// deliver replaces any pending snapshot with snap. Callers hold n.mu, which
// makes this the only sender.
func (s *Subscription) deliver(snap models.Snapshot) {
	coalesced := "false"
	select {
	case <-s.ch:
		coalesced = "true"
	default:
	}
	s.ch <- snap
	snapshotsDelivered.WithLabelValues(snap.Filter.String(), coalesced).Inc()
}
