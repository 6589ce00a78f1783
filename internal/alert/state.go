package alert

import (
	"sync"
	"time"

	"github.com/dmoralesp/turnero/internal/domain"
)

// Default transient marker lifetimes.
const (
	// DefaultRecentTTL is how long a record stays marked recently new.
	DefaultRecentTTL = 10 * time.Second
	// DefaultBannerTTL is how long the alert banner stays visible.
	DefaultBannerTTL = 5 * time.Second
)

// State holds the transient alert markers for one dashboard session:
// recently-new markers per record key and the banner-visible flag.
// Entries expire autonomously via scheduled clears; a new alert cycle
// extends the existing markers rather than stacking.
type State struct {
	recentTTL time.Duration
	bannerTTL time.Duration

	mu          sync.Mutex
	recent      map[domain.Key]*time.Timer
	banner      bool
	bannerTimer *time.Timer
}

// StateOption configures a State.
type StateOption func(*State)

// WithTTLs overrides the marker lifetimes. Used by tests.
func WithTTLs(recent, banner time.Duration) StateOption {
	return func(s *State) {
		s.recentTTL = recent
		s.bannerTTL = banner
	}
}

// NewState creates a State with the default marker lifetimes.
func NewState(opts ...StateOption) *State {
	s := &State{
		recentTTL: DefaultRecentTTL,
		bannerTTL: DefaultBannerTTL,
		recent:    make(map[domain.Key]*time.Timer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MarkNew marks record keys as recently new. Re-marking an already
// marked key restarts its expiry.
func (s *State) MarkNew(keys ...domain.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		key := key
		if timer, ok := s.recent[key]; ok {
			timer.Stop()
		}
		s.recent[key] = time.AfterFunc(s.recentTTL, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.recent, key)
		})
	}
}

// IsRecent reports whether the record key is currently marked new.
func (s *State) IsRecent(key domain.Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.recent[key]
	return ok
}

// ShowBanner makes the banner visible, restarting its expiry if it was
// already showing.
func (s *State) ShowBanner() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bannerTimer != nil {
		s.bannerTimer.Stop()
	}
	s.banner = true
	s.bannerTimer = time.AfterFunc(s.bannerTTL, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.banner = false
	})
}

// BannerVisible reports whether the banner is currently showing.
func (s *State) BannerVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.banner
}

// Shutdown cancels every pending expiry. The session teardown must not
// leak a stray timer.
func (s *State) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, timer := range s.recent {
		timer.Stop()
		delete(s.recent, key)
	}
	if s.bannerTimer != nil {
		s.bannerTimer.Stop()
		s.bannerTimer = nil
	}
	s.banner = false
}
