// Package rotation implements the placement-facing behavior of ad units:
// cycling among the active creatives of a slot, session dismissals of
// sticky units, and in-article slot injection.
package rotation

import (
	"sync"
	"time"

	"FTJ-Ads-Backend/internal/domain"
	"FTJ-Ads-Backend/internal/platform"
)

// DefaultInterval is the rotation period used by every placement unit.
const DefaultInterval = 10 * time.Second

// Rotator cycles through the active ads of one placement on a fixed
// interval. Rotation pauses while the pointer hovers the unit and resumes
// on leave; the index resets to 0 whenever the active-ad count changes.
type Rotator struct {
	mu       sync.Mutex
	clock    platform.Clock
	interval time.Duration
	onChange func(index int)

	ads     []*domain.Ad
	index   int
	paused  bool
	stopped bool
	timer   platform.Timer
}

// NewRotator creates a stopped-at-zero rotator. onChange, if non-nil, is
// invoked after every advancement with the new index.
func NewRotator(clock platform.Clock, interval time.Duration, onChange func(index int)) *Rotator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Rotator{
		clock:    clock,
		interval: interval,
		onChange: onChange,
	}
}

// SetAds replaces the ad set. A change in count resets the index to 0
// before anything can read it, so a unit never references an out-of-range
// ad. Rotation only runs while more than one ad matches.
func (r *Rotator) SetAds(ads []*domain.Ad) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(ads) != len(r.ads) {
		r.index = 0
	}
	r.ads = ads

	r.armLocked()
}

// armLocked starts or stops the interval timer according to current state.
// Caller must hold the lock.
func (r *Rotator) armLocked() {
	wantTimer := len(r.ads) > 1 && !r.paused && !r.stopped

	if !wantTimer {
		if r.timer != nil {
			r.timer.Stop()
			r.timer = nil
		}
		return
	}

	if r.timer != nil {
		return
	}

	r.timer = r.clock.AfterFunc(r.interval, r.advance)
}

// advance moves to the next ad and re-arms the timer.
func (r *Rotator) advance() {
	r.mu.Lock()
	r.timer = nil
	if r.stopped || r.paused || len(r.ads) < 2 {
		r.mu.Unlock()
		return
	}

	r.index = (r.index + 1) % len(r.ads)
	idx := r.index
	onChange := r.onChange
	r.armLocked()
	r.mu.Unlock()

	if onChange != nil {
		onChange(idx)
	}
}

// Pause stops advancement while the pointer hovers the unit.
func (r *Rotator) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = true
	r.armLocked()
}

// Resume restarts rotation after the pointer leaves.
func (r *Rotator) Resume() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = false
	r.armLocked()
}

// Current returns the ad under the pointer index, or nil when the
// placement has no ads.
func (r *Rotator) Current() *domain.Ad {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.ads) == 0 {
		return nil
	}
	if r.index >= len(r.ads) {
		return r.ads[0]
	}
	return r.ads[r.index]
}

// Index returns the current rotation index.
func (r *Rotator) Index() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index
}

// Stop cancels the interval timer permanently (unit unmounted).
func (r *Rotator) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}
