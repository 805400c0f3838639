package service

import (
	"errors"
	"sync"
	"time"

	"FTJ-Ads-Backend/internal/abtest"
	"FTJ-Ads-Backend/internal/consent"
	"FTJ-Ads-Backend/internal/domain"
	"FTJ-Ads-Backend/internal/inventory"
	"FTJ-Ads-Backend/internal/platform"
	"FTJ-Ads-Backend/internal/rotation"

	"go.uber.org/zap"
)

var (
	ErrUnknownPlacement = errors.New("unknown placement")
	ErrNoAdAvailable    = errors.New("no ad available for placement")
)

// Decision is the answer to "what should this placement show right now".
type Decision struct {
	Ad            *domain.Ad `json:"ad"`
	Variant       string     `json:"variant"`
	RotationIndex int        `json:"rotationIndex"`
	RotationCount int        `json:"rotationCount"`
}

// sessionRotor keeps rotation state for one (session, placement) pair so
// repeated polls from the same page cycle through the eligible ads instead
// of always returning the top-priority one.
type sessionRotor struct {
	rotor    *rotation.Rotator
	lastSeen time.Time
}

// DeliveryService decides which ad a placement shows: eligible inventory
// sorted by priority, per-session rotation, sticky dismissals honored, and
// the layout experiment variant attached for the client to render with.
// Visitors who rejected advertising get nothing.
type DeliveryService struct {
	inventory  *inventory.Store
	assigner   *abtest.Assigner
	dismissals *rotation.DismissalStore
	consents   *consent.Registry
	clock      platform.Clock
	log        *zap.Logger

	rotationInterval time.Duration
	sessionTTL       time.Duration

	mu     sync.Mutex
	rotors map[string]*sessionRotor
	sweep  platform.Timer
}

// NewDeliveryService creates the decisioning service.
func NewDeliveryService(
	inv *inventory.Store,
	assigner *abtest.Assigner,
	dismissals *rotation.DismissalStore,
	consents *consent.Registry,
	clock platform.Clock,
	rotationInterval, sessionTTL time.Duration,
	log *zap.Logger,
) *DeliveryService {
	if rotationInterval <= 0 {
		rotationInterval = rotation.DefaultInterval
	}
	if sessionTTL <= 0 {
		sessionTTL = 30 * time.Minute
	}

	s := &DeliveryService{
		inventory:        inv,
		assigner:         assigner,
		dismissals:       dismissals,
		consents:         consents,
		clock:            clock,
		log:              log,
		rotationInterval: rotationInterval,
		sessionTTL:       sessionTTL,
		rotors:           make(map[string]*sessionRotor),
	}
	s.sweep = clock.AfterFunc(sessionTTL, s.evictIdle)
	return s
}

// Decide returns the current ad for a placement as seen by one session.
func (s *DeliveryService) Decide(sessionID, visitorID string, placement domain.Placement) (*Decision, error) {
	if !placement.Valid() {
		return nil, ErrUnknownPlacement
	}

	if !s.consents.CanShowAds(visitorID) {
		return nil, ErrNoAdAvailable
	}

	if s.dismissed(sessionID, placement) {
		return nil, ErrNoAdAvailable
	}

	ads := s.inventory.ActiveByPlacement(placement)
	if len(ads) == 0 {
		return nil, ErrNoAdAvailable
	}
	inventory.SortByPriority(ads)

	s.mu.Lock()
	entry, ok := s.rotors[rotorKey(sessionID, placement)]
	if !ok {
		entry = &sessionRotor{
			rotor: rotation.NewRotator(s.clock, s.rotationInterval, nil),
		}
		s.rotors[rotorKey(sessionID, placement)] = entry
	}
	entry.lastSeen = s.clock.Now()
	s.mu.Unlock()

	entry.rotor.SetAds(ads)

	ad := entry.rotor.Current()
	if ad == nil {
		return nil, ErrNoAdAvailable
	}

	return &Decision{
		Ad:            ad,
		Variant:       s.assigner.VariantFor(visitorID, abtest.DefaultExperiments[0]),
		RotationIndex: entry.rotor.Index(),
		RotationCount: len(ads),
	}, nil
}

// MarkDismissed records that a session closed the placement's ad. Sticky
// placements stay closed across sessions for the dismissal TTL.
func (s *DeliveryService) MarkDismissed(sessionID string, placement domain.Placement) {
	key := rotorKey(sessionID, placement)
	if placement == domain.PlacementMobileSticky {
		s.dismissals.DismissSticky(key)
	} else {
		s.dismissals.DismissSession(key)
	}
	s.log.Debug("placement dismissed",
		zap.String("session_id", sessionID),
		zap.String("placement", string(placement)))
}

func (s *DeliveryService) dismissed(sessionID string, placement domain.Placement) bool {
	key := rotorKey(sessionID, placement)
	if placement == domain.PlacementMobileSticky {
		return s.dismissals.StickyDismissed(key)
	}
	return s.dismissals.SessionDismissed(key)
}

// ActiveSessions returns the number of live rotation states, for health
// reporting.
func (s *DeliveryService) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rotors)
}

// Stop tears down all rotation timers.
func (s *DeliveryService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sweep != nil {
		s.sweep.Stop()
		s.sweep = nil
	}
	for key, entry := range s.rotors {
		entry.rotor.Stop()
		delete(s.rotors, key)
	}
}

// evictIdle drops rotation state for sessions idle past the TTL.
func (s *DeliveryService) evictIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sweep == nil {
		return
	}

	cutoff := s.clock.Now().Add(-s.sessionTTL)
	evicted := 0
	for key, entry := range s.rotors {
		if entry.lastSeen.Before(cutoff) {
			entry.rotor.Stop()
			delete(s.rotors, key)
			evicted++
		}
	}
	if evicted > 0 {
		s.log.Debug("evicted idle rotation sessions", zap.Int("count", evicted))
	}

	s.sweep = s.clock.AfterFunc(s.sessionTTL, s.evictIdle)
}

func rotorKey(sessionID string, placement domain.Placement) string {
	return sessionID + ":" + string(placement)
}
