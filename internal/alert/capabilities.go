// Package alert drives the multi-channel alert pipeline: audible tone
// sequence, transient banner and per-record highlight, and OS-level
// notification.
package alert

import (
	"fmt"
	"io"
	"os/exec"
	"time"
)

// Tone is one audible burst: a pitch, a duration, and the exponential
// decay constant for the envelope.
type Tone struct {
	Frequency float64
	Duration  time.Duration
	Decay     float64
}

// ToneEmitter plays a single tone burst. Hosts without audio support
// provide a no-op implementation; core logic never probes for the
// capability, it calls it and the adapter decides.
type ToneEmitter interface {
	EmitTone(t Tone)
}

// HapticFeedback plays a vibration pattern when the host supports it.
type HapticFeedback interface {
	Pulse(pattern []time.Duration)
}

// SystemNotifier emits OS-level notifications.
type SystemNotifier interface {
	// Granted reports whether notification permission was previously
	// granted on this host.
	Granted() bool
	// Notify emits one notification.
	Notify(title, body string) error
}

// NoopEmitter discards tones.
type NoopEmitter struct{}

func (NoopEmitter) EmitTone(Tone) {}

// NoopHaptics discards vibration patterns.
type NoopHaptics struct{}

func (NoopHaptics) Pulse([]time.Duration) {}

// NoopNotifier never has permission and discards notifications.
type NoopNotifier struct{}

func (NoopNotifier) Granted() bool            { return false }
func (NoopNotifier) Notify(_, _ string) error { return nil }

// TerminalBell emits tones as the terminal bell character. Pitch and
// envelope are lost; the audible cue is what matters on a terminal host.
type TerminalBell struct {
	W io.Writer
}

func (b TerminalBell) EmitTone(Tone) {
	fmt.Fprint(b.W, "\a")
}

// ExecNotifier shells out to notify-send for OS-level notifications.
type ExecNotifier struct{}

// Granted reports whether notify-send is available on this host.
func (ExecNotifier) Granted() bool {
	_, err := exec.LookPath("notify-send")
	return err == nil
}

func (ExecNotifier) Notify(title, body string) error {
	return exec.Command("notify-send", title, body).Run()
}
