package consent

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"FTJ-Ads-Backend/internal/domain"
	"FTJ-Ads-Backend/internal/platform"

	"go.uber.org/zap"
)

const registryKeyPrefix = "ftj_consent_"

var ErrMissingVisitorID = errors.New("consent record has no visitor id")

// Registry keeps consent decisions on the server side, keyed by visitor id,
// so delivery can honor a rejection without trusting each request to carry
// the consent signal. Visitors with no recorded decision are served ads;
// once a decision lands, advertising is gated strictly by it.
type Registry struct {
	mu    sync.Mutex
	kv    platform.KeyValueStore
	clock platform.Clock
	log   *zap.Logger
}

func NewRegistry(kv platform.KeyValueStore, clock platform.Clock, log *zap.Logger) *Registry {
	return &Registry{kv: kv, clock: clock, log: log}
}

// Record overwrites the visitor's decision wholesale. Necessary is forced on.
func (r *Registry) Record(visitorID string, prefs domain.ConsentPreferences) error {
	visitorID = strings.TrimSpace(visitorID)
	if visitorID == "" {
		return ErrMissingVisitorID
	}
	prefs.Necessary = true

	state := domain.ConsentState{
		HasConsented: true,
		Preferences:  prefs,
		Timestamp:    r.clock.Now(),
	}

	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.kv.Set(registryKeyPrefix+visitorID, string(raw)); err != nil {
		r.log.Warn("failed to persist consent decision",
			zap.String("visitor_id", visitorID), zap.Error(err))
		return err
	}
	return nil
}

// Get returns the recorded decision, if any. A corrupt record reads as
// undecided.
func (r *Registry) Get(visitorID string) (domain.ConsentState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, ok := r.kv.Get(registryKeyPrefix + visitorID)
	if !ok {
		return domain.ConsentState{}, false
	}
	var state domain.ConsentState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		r.log.Warn("corrupt consent record, treating visitor as undecided",
			zap.String("visitor_id", visitorID), zap.Error(err))
		return domain.ConsentState{}, false
	}
	state.Preferences.Necessary = true
	return state, true
}

// CanShowAds reports whether delivery may serve this visitor. Only an
// explicit advertising opt-out blocks ads.
func (r *Registry) CanShowAds(visitorID string) bool {
	state, ok := r.Get(visitorID)
	if !ok || !state.HasConsented {
		return true
	}
	return state.Preferences.Advertising
}
