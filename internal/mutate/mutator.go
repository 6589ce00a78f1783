// Package mutate applies optimistic status transitions and converges
// them with the remote system.
package mutate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmoralesp/turnero/internal/domain"
	"github.com/dmoralesp/turnero/internal/logging"
	"github.com/dmoralesp/turnero/internal/store"
)

// DefaultReconcileDelay is how long after a mutation the extra
// reconciliation fetch is scheduled.
const DefaultReconcileDelay = 500 * time.Millisecond

var (
	// ErrNotFound is returned when the record key is not in the local
	// snapshot.
	ErrNotFound = errors.New("record not found")
	// ErrInFlight is returned when a mutation on the same record has
	// not settled yet.
	ErrInFlight = errors.New("mutation already in flight for record")
)

// UpdateFunc persists a status change remotely.
type UpdateFunc func(ctx context.Context, rowID int, status domain.Status) error

// Refresher schedules an out-of-band reconciliation fetch.
type Refresher interface {
	RefreshIn(d time.Duration)
}

// Mutator applies a status change locally first, persists it remotely,
// and always schedules a reconciliation fetch shortly after so the
// authoritative state overwrites the optimistic guess if they diverged.
type Mutator struct {
	vertical domain.Vertical
	store    *store.SnapshotStore
	update   UpdateFunc
	poller   Refresher
	delay    time.Duration
	logger   logging.Logger

	mu       sync.Mutex
	inflight map[domain.Key]bool
	settled  sync.WaitGroup
}

// Option configures a Mutator.
type Option func(*Mutator)

// WithReconcileDelay overrides the delay before the post-mutation
// reconciliation fetch.
func WithReconcileDelay(d time.Duration) Option {
	return func(m *Mutator) { m.delay = d }
}

// New creates a Mutator for the given vertical.
func New(vertical domain.Vertical, snapshots *store.SnapshotStore, update UpdateFunc, poller Refresher, logger logging.Logger, opts ...Option) *Mutator {
	if logger == nil {
		logger = logging.Noop{}
	}
	m := &Mutator{
		vertical: vertical,
		store:    snapshots,
		update:   update,
		poller:   poller,
		delay:    DefaultReconcileDelay,
		logger:   logger,
		inflight: make(map[domain.Key]bool),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Transition moves the record to the target status. The local snapshot
// reflects the change before the remote call resolves; the scheduled
// reconciliation fetch converges local and remote truth regardless of
// the call's outcome.
//
// A transition outside the vertical's allowed set is a caller error.
// Transitions on the same record are serialized via the in-flight flag;
// different records are unconstrained.
func (m *Mutator) Transition(ctx context.Context, key domain.Key, target domain.Status) error {
	record, ok := m.store.Find(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if !m.vertical.CanTransition(record.Status, target) {
		return fmt.Errorf("transition %s -> %s not allowed for %s", record.Status, target, m.vertical.Name)
	}

	m.mu.Lock()
	if m.inflight[key] {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrInFlight, key)
	}
	m.inflight[key] = true
	m.mu.Unlock()

	m.store.SetStatus(key, target)
	m.poller.RefreshIn(m.delay)

	m.settled.Add(1)
	go func() {
		defer m.settled.Done()
		if err := m.update(ctx, record.RowID, target); err != nil {
			// The optimistic state stays in place; the scheduled fetch
			// pulls the authoritative status.
			m.logger.Warn("remote mutation failed, awaiting reconciliation",
				"row", record.RowID, "target", target.String(), "error", err)
		}
		m.mu.Lock()
		delete(m.inflight, key)
		m.mu.Unlock()
	}()
	return nil
}

// InFlight reports whether a mutation on the record has not settled.
// The UI uses it to disable re-triggering a transition.
func (m *Mutator) InFlight(key domain.Key) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inflight[key]
}

// Wait blocks until every issued mutation has settled. Used on session
// teardown and in tests.
func (m *Mutator) Wait() {
	m.settled.Wait()
}
