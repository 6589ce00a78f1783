package alert

import (
	"fmt"

	"github.com/dmoralesp/turnero/internal/domain"
	"github.com/dmoralesp/turnero/internal/logging"
)

// Dispatcher turns a non-empty diff into at most one alert cycle:
// one tone sequence, the banner, the recently-new markers, and one
// OS-level notification. Never one alert per changed record.
type Dispatcher struct {
	state    *State
	tones    *Sequencer
	notifier SystemNotifier
	logger   logging.Logger
}

// NewDispatcher creates a Dispatcher. A nil notifier falls back to the
// no-op implementation.
func NewDispatcher(state *State, tones *Sequencer, notifier SystemNotifier, logger logging.Logger) *Dispatcher {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	if logger == nil {
		logger = logging.Noop{}
	}
	return &Dispatcher{
		state:    state,
		tones:    tones,
		notifier: notifier,
		logger:   logger,
	}
}

// Dispatch fires one alert cycle for the diff. An empty diff is a
// no-op. The tone sequencer enforces the sound-unlock latch itself.
func (d *Dispatcher) Dispatch(diff domain.DiffResult) {
	if diff.Empty() {
		return
	}

	d.tones.Play()
	d.state.ShowBanner()

	keys := make([]domain.Key, 0, len(diff.New))
	for key := range diff.New {
		keys = append(keys, key)
	}
	d.state.MarkNew(keys...)

	if d.notifier.Granted() {
		if err := d.notifier.Notify("Turnero", summarize(diff)); err != nil {
			d.logger.Warn("system notification failed", "error", err)
		}
	}
	d.logger.Debug("alert cycle dispatched", "new", len(diff.New), "changed", len(diff.Changed))
}

// summarize builds the one-line notification body for a diff.
func summarize(diff domain.DiffResult) string {
	switch {
	case len(diff.New) > 0 && len(diff.Changed) > 0:
		return fmt.Sprintf("%d new, %d updated", len(diff.New), len(diff.Changed))
	case len(diff.New) > 0:
		return fmt.Sprintf("%d new", len(diff.New))
	default:
		return fmt.Sprintf("%d updated", len(diff.Changed))
	}
}
