package alert

import (
	"sync"
	"time"
)

// Tone sequence parameters: three bursts with ascending pitch, each
// ~300ms with an exponential decay envelope, plus a short haptic pulse.
var (
	burstOffsets     = []time.Duration{0, 180 * time.Millisecond, 360 * time.Millisecond}
	burstFrequencies = []float64{880, 1174.66, 1567.98}
	burstDuration    = 300 * time.Millisecond
	burstDecay       = 8.0
	hapticPattern    = []time.Duration{60 * time.Millisecond, 40 * time.Millisecond, 60 * time.Millisecond}
)

// Sequencer synthesizes the audible alert and haptic pulse. Playback
// requires a prior unlock by explicit user action; once granted, the
// unlock persists for the process lifetime.
type Sequencer struct {
	emitter ToneEmitter
	haptics HapticFeedback

	mu       sync.Mutex
	unlocked bool
	timers   []*time.Timer
}

// NewSequencer creates a Sequencer over the given capabilities. Nil
// capabilities fall back to no-ops.
func NewSequencer(emitter ToneEmitter, haptics HapticFeedback) *Sequencer {
	if emitter == nil {
		emitter = NoopEmitter{}
	}
	if haptics == nil {
		haptics = NoopHaptics{}
	}
	return &Sequencer{emitter: emitter, haptics: haptics}
}

// Unlock enables playback. Idempotent; there is no re-prompting once
// granted.
func (s *Sequencer) Unlock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unlocked = true
}

// Unlocked reports whether playback has been enabled.
func (s *Sequencer) Unlocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unlocked
}

// Play schedules the three-burst tone sequence and the haptic pulse.
// A locked sequencer plays nothing.
func (s *Sequencer) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.unlocked {
		return
	}
	for i, offset := range burstOffsets {
		tone := Tone{
			Frequency: burstFrequencies[i],
			Duration:  burstDuration,
			Decay:     burstDecay,
		}
		if offset == 0 {
			s.emitter.EmitTone(tone)
			continue
		}
		var timer *time.Timer
		timer = time.AfterFunc(offset, func() {
			s.emitter.EmitTone(tone)
			s.mu.Lock()
			s.removeTimer(timer)
			s.mu.Unlock()
		})
		s.timers = append(s.timers, timer)
	}
	s.haptics.Pulse(hapticPattern)
}

// removeTimer drops a fired timer so the slice stays bounded across a
// long session. Caller holds mu.
func (s *Sequencer) removeTimer(timer *time.Timer) {
	for i, t := range s.timers {
		if t == timer {
			s.timers = append(s.timers[:i], s.timers[i+1:]...)
			return
		}
	}
}

// Stop cancels any pending tone bursts.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = nil
}
