package alert

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmoralesp/turnero/internal/domain"
)

// recordingNotifier captures OS-level notifications.
type recordingNotifier struct {
	mu      sync.Mutex
	granted bool
	bodies  []string
}

func (r *recordingNotifier) Granted() bool {
	return r.granted
}

func (r *recordingNotifier) Notify(title, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bodies = append(r.bodies, body)
	return nil
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bodies)
}

func diffWith(newKeys, changedKeys []domain.Key) domain.DiffResult {
	d := domain.DiffResult{
		New:     make(map[domain.Key]struct{}),
		Changed: make(map[domain.Key]struct{}),
	}
	for _, k := range newKeys {
		d.New[k] = struct{}{}
	}
	for _, k := range changedKeys {
		d.Changed[k] = struct{}{}
	}
	return d
}

func newTestDispatcher(granted bool) (*Dispatcher, *State, *recordingEmitter, *recordingNotifier) {
	emitter := &recordingEmitter{}
	state := NewState(WithTTLs(time.Minute, time.Minute))
	seq := NewSequencer(emitter, nil)
	notifier := &recordingNotifier{granted: granted}
	return NewDispatcher(state, seq, notifier, nil), state, emitter, notifier
}

func TestDispatcher_EmptyDiffIsNoop(t *testing.T) {
	d, state, emitter, notifier := newTestDispatcher(true)
	defer state.Shutdown()
	d.tones.Unlock()

	d.Dispatch(domain.DiffResult{})

	assert.Zero(t, emitter.count())
	assert.Zero(t, notifier.count())
	assert.False(t, state.BannerVisible())
}

func TestDispatcher_OneAlertCyclePerDiff(t *testing.T) {
	d, state, emitter, notifier := newTestDispatcher(true)
	defer state.Shutdown()
	d.tones.Unlock()

	keyA := domain.Key("1|Ana|09:00")
	keyB := domain.Key("2|Beto|10:00")
	keyC := domain.Key("3|Carla|11:00")

	// Three changed records, one cycle: never one alert per record.
	d.Dispatch(diffWith([]domain.Key{keyA, keyB}, []domain.Key{keyC}))

	require.Eventually(t, func() bool {
		return emitter.count() == 3
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, notifier.count())
	assert.True(t, state.BannerVisible())
	assert.True(t, state.IsRecent(keyA))
	assert.True(t, state.IsRecent(keyB))
	// Status changes are not "recently new"; no highlight.
	assert.False(t, state.IsRecent(keyC))
}

func TestDispatcher_NoToneWhenLocked(t *testing.T) {
	d, state, emitter, _ := newTestDispatcher(true)
	defer state.Shutdown()

	d.Dispatch(diffWith([]domain.Key{"1|Ana|09:00"}, nil))
	time.Sleep(500 * time.Millisecond)

	assert.Zero(t, emitter.count())
	// Visual channels still fire.
	assert.True(t, state.BannerVisible())
}

func TestDispatcher_NoOSNotificationWithoutPermission(t *testing.T) {
	d, state, _, notifier := newTestDispatcher(false)
	defer state.Shutdown()

	d.Dispatch(diffWith([]domain.Key{"1|Ana|09:00"}, nil))

	assert.Zero(t, notifier.count())
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name string
		diff domain.DiffResult
		want string
	}{
		{"new only", diffWith([]domain.Key{"a", "b"}, nil), "2 new"},
		{"changed only", diffWith(nil, []domain.Key{"a"}), "1 updated"},
		{"both", diffWith([]domain.Key{"a"}, []domain.Key{"b", "c"}), "1 new, 2 updated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, summarize(tt.diff))
		})
	}
}
