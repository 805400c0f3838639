// Package consent tracks the visitor's cookie/ad consent decision and gates
// whether ads may render at all. Ads render by default until a decision is
// recorded; after that rendering is gated strictly by the advertising
// preference.
package consent

import (
	"encoding/json"
	"sync"
	"time"

	"FTJ-Ads-Backend/internal/domain"
	"FTJ-Ads-Backend/internal/platform"

	"go.uber.org/zap"
)

const stateKey = "ftj_ad_consent"

// DefaultBannerDelay is how long after page load the consent banner appears.
const DefaultBannerDelay = time.Second

// BannerState models the consent banner lifecycle.
type BannerState int

const (
	BannerUnseen BannerState = iota
	BannerVisible
	BannerDecided
)

// Tracker receives the consent_change telemetry event emitted on every
// decision. *telemetry.Batcher satisfies it.
type Tracker interface {
	TrackConsentChange(advertising bool, prefs domain.ConsentPreferences)
}

// Store holds the visitor's consent decision, persisted wholesale on every
// save. A storage failure keeps the in-memory decision for the current page
// life; the banner simply reappears next visit.
type Store struct {
	mu      sync.Mutex
	kv      platform.KeyValueStore
	clock   platform.Clock
	tracker Tracker
	log     *zap.Logger

	state       *domain.ConsentState
	loaded      bool
	banner      BannerState
	bannerTimer platform.Timer
}

func NewStore(kv platform.KeyValueStore, clock platform.Clock, tracker Tracker, log *zap.Logger) *Store {
	return &Store{
		kv:      kv,
		clock:   clock,
		tracker: tracker,
		log:     log,
	}
}

// load reads the persisted decision once. Caller must hold the lock.
func (s *Store) loadLocked() {
	if s.loaded {
		return
	}
	s.loaded = true

	raw, ok := s.kv.Get(stateKey)
	if !ok {
		return
	}

	var st domain.ConsentState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		s.log.Warn("corrupt consent state, treating as undecided", zap.Error(err))
		return
	}

	st.Preferences.Necessary = true
	s.state = &st
	if st.HasConsented {
		s.banner = BannerDecided
	}
}

// GetConsentPreferences returns the recorded preferences, or the defaults
// when no decision exists yet.
func (s *Store) GetConsentPreferences() domain.ConsentPreferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()

	if s.state == nil {
		return domain.DefaultConsentPreferences()
	}
	return s.state.Preferences
}

// HasUserConsented reports whether any decision has been recorded.
func (s *Store) HasUserConsented() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()
	return s.state != nil && s.state.HasConsented
}

// CanShowAds is true when no decision has been recorded yet, or when the
// recorded decision allows advertising. It is false only for an explicit
// advertising opt-out.
func (s *Store) CanShowAds() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()

	if s.state == nil || !s.state.HasConsented {
		return true
	}
	return s.state.Preferences.Advertising
}

// CanTrackAnalytics mirrors CanShowAds for the analytics category.
func (s *Store) CanTrackAnalytics() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()

	if s.state == nil || !s.state.HasConsented {
		return true
	}
	return s.state.Preferences.Analytics
}

// AcceptAll records consent to every category.
func (s *Store) AcceptAll() {
	s.save(domain.ConsentPreferences{Necessary: true, Analytics: true, Advertising: true})
}

// RejectAll opts out of analytics and advertising. Necessary stays true.
func (s *Store) RejectAll() {
	s.save(domain.ConsentPreferences{Necessary: true, Analytics: false, Advertising: false})
}

// SavePreferences records a custom decision for the toggleable categories.
func (s *Store) SavePreferences(analytics, advertising bool) {
	s.save(domain.ConsentPreferences{Necessary: true, Analytics: analytics, Advertising: advertising})
}

// save overwrites the decision wholesale and emits exactly one
// consent_change event.
func (s *Store) save(prefs domain.ConsentPreferences) {
	s.mu.Lock()
	s.loadLocked()

	st := domain.ConsentState{
		HasConsented: true,
		Preferences:  prefs,
		Timestamp:    s.clock.Now(),
	}
	s.state = &st
	s.banner = BannerDecided
	if s.bannerTimer != nil {
		s.bannerTimer.Stop()
		s.bannerTimer = nil
	}

	raw, err := json.Marshal(st)
	if err == nil {
		err = s.kv.Set(stateKey, string(raw))
	}
	if err != nil {
		// In-memory state still applies for this page life
		s.log.Warn("failed to persist consent decision", zap.Error(err))
	}
	s.mu.Unlock()

	s.tracker.TrackConsentChange(prefs.Advertising, prefs)
}

// ScheduleBanner arms the banner-delay timer: Unseen becomes Visible after
// the delay unless a decision already exists.
func (s *Store) ScheduleBanner(delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()

	if s.banner != BannerUnseen || s.bannerTimer != nil {
		return
	}

	s.bannerTimer = s.clock.AfterFunc(delay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.bannerTimer = nil
		if s.banner == BannerUnseen {
			s.banner = BannerVisible
		}
	})
}

// Banner returns the current banner lifecycle state.
func (s *Store) Banner() BannerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()
	return s.banner
}
