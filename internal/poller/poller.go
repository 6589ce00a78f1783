// Package poller drives the fetch-diff-publish reconciliation cycle for
// one dashboard session.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/dmoralesp/turnero/internal/diff"
	"github.com/dmoralesp/turnero/internal/domain"
	"github.com/dmoralesp/turnero/internal/logging"
	"github.com/dmoralesp/turnero/internal/store"
)

// FetchFunc retrieves the current snapshot from the remote system.
type FetchFunc func(ctx context.Context) (*domain.Snapshot, error)

// Update is one published reconciliation result.
type Update struct {
	Snapshot *domain.Snapshot
	Diff     domain.DiffResult
}

// Loop fetches the remote snapshot on a fixed period, diffs it against
// the local store, and publishes the result to subscribers. Diffing
// against the store rather than the raw previous fetch means optimistic
// local status changes are already part of the baseline, so the
// reconciliation fetch after a transition does not re-alert the
// operator's own action.
//
// The loop owns every timer it creates: Start launches them, Stop tears
// them all down together. Fetch failures keep the previous snapshot and
// retry on the next tick, with no backoff. The first successful fetch
// becomes the baseline and produces no diff.
type Loop struct {
	period time.Duration
	fetch  FetchFunc
	store  *store.SnapshotStore
	logger logging.Logger

	tick <-chan time.Time // injectable for tests

	mu       sync.Mutex
	lastSync time.Time
	subs     []chan Update
	extras   []*time.Timer
	refresh  chan struct{}
	cancel   context.CancelFunc
	done     chan struct{}
}

// Option configures a Loop.
type Option func(*Loop)

// WithTickChannel replaces the internal ticker with an external tick
// source. Used by tests to drive cycles deterministically.
func WithTickChannel(tick <-chan time.Time) Option {
	return func(l *Loop) { l.tick = tick }
}

// New creates a Loop polling with the given period.
func New(period time.Duration, fetch FetchFunc, snapshots *store.SnapshotStore, logger logging.Logger, opts ...Option) *Loop {
	if logger == nil {
		logger = logging.Noop{}
	}
	l := &Loop{
		period:  period,
		fetch:   fetch,
		store:   snapshots,
		logger:  logger,
		refresh: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Subscribe registers an update channel. Must be called before Start.
// Slow subscribers drop updates rather than stalling the loop.
func (l *Loop) Subscribe() <-chan Update {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch := make(chan Update, 4)
	l.subs = append(l.subs, ch)
	return ch
}

// Start runs the loop until Stop or context cancellation. The first
// fetch happens immediately; subsequent fetches follow the period.
func (l *Loop) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	l.mu.Lock()
	l.cancel = cancel
	l.done = make(chan struct{})
	done := l.done
	l.mu.Unlock()

	go func() {
		defer close(done)

		tick := l.tick
		var ticker *time.Ticker
		if tick == nil {
			ticker = time.NewTicker(l.period)
			tick = ticker.C
			defer ticker.Stop()
		}

		l.cycle(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick:
				l.cycle(ctx)
			case <-l.refresh:
				l.cycle(ctx)
			}
		}
	}()
}

// Stop cancels the loop and every extra timer it scheduled, then waits
// for the loop goroutine to exit.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel := l.cancel
	done := l.done
	for _, t := range l.extras {
		t.Stop()
	}
	l.extras = nil
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// RefreshNow requests one immediate out-of-schedule fetch. The periodic
// schedule is not reset or disturbed. A refresh already pending is
// coalesced.
func (l *Loop) RefreshNow() {
	select {
	case l.refresh <- struct{}{}:
	default:
	}
}

// RefreshIn schedules one out-of-schedule fetch after the delay. The
// timer is torn down by Stop.
func (l *Loop) RefreshIn(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.extras = append(l.extras, time.AfterFunc(d, l.RefreshNow))
}

// Remaining returns the time until the next scheduled refresh, measured
// from the last successful fetch. It reflects time since last sync, not
// the wall-clock schedule, and resets only on success.
func (l *Loop) Remaining() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.lastSync.IsZero() {
		return l.period
	}
	left := l.period - time.Since(l.lastSync)
	if left < 0 {
		return 0
	}
	return left
}

// cycle runs one fetch-diff-publish pass. Within a cycle, fetch
// completion precedes diffing, which precedes publishing; a failed
// fetch leaves all derived state untouched.
func (l *Loop) cycle(ctx context.Context) {
	snap, err := l.fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		l.logger.Warn("reconciliation fetch failed, keeping previous snapshot", "error", err)
		return
	}

	result := diff.Compute(l.store.Current(), snap)
	l.store.Replace(snap)

	l.mu.Lock()
	l.lastSync = time.Now()
	subs := l.subs
	l.mu.Unlock()

	// Each subscriber gets its own copy; a consumer mutating its
	// snapshot must not reach the store or any other subscriber.
	for _, ch := range subs {
		select {
		case ch <- Update{Snapshot: snap.Clone(), Diff: result}:
		default:
			l.logger.Debug("dropping update for slow subscriber")
		}
	}
}
