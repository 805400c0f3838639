// Package viewability tracks one ad unit's viewport lifecycle: when it may
// render, how long it was actually visible, and whether it degraded to the
// fallback state because the creative failed to load in time.
package viewability

import (
	"sync"
	"time"

	"FTJ-Ads-Backend/internal/domain"
	"FTJ-Ads-Backend/internal/platform"
)

const (
	FallbackReasonTimeout = "timeout"
	FallbackReasonError   = "error"
)

// DefaultMinViewable is the minimum continuous visibility for a "viewable"
// event.
const DefaultMinViewable = time.Second

// Config holds per-unit controller configuration.
type Config struct {
	LoadDelay       time.Duration // delay between entering the viewport and rendering
	FallbackTimeout time.Duration // how long the creative gets to load once rendering starts
	MinViewable     time.Duration // minimum visible duration for a viewable event
	RespectSaveData bool          // suppress rendering on constrained connections
	Placement       domain.Placement
	Size            string
	Variant         string
}

// Callbacks are invoked on viewport transitions.
type Callbacks struct {
	OnVisible func()
	OnHidden  func()
}

// Tracker receives the telemetry this controller emits. *telemetry.Batcher
// satisfies it.
type Tracker interface {
	TrackImpression(placement domain.Placement, size, variant string)
	TrackViewable(placement domain.Placement, duration time.Duration)
	TrackFallback(placement domain.Placement, reason string)
}

// Controller is the state machine behind one mounted ad unit. All input
// arrives as callbacks (viewport transitions, load/error signals, timers);
// Close cancels every pending timer so nothing fires after unmount.
type Controller struct {
	mu      sync.Mutex
	cfg     Config
	clock   platform.Clock
	tracker Tracker
	cb      Callbacks
	hints   platform.NetworkHints

	visible        bool
	loaded         bool
	showFallback   bool
	shouldRender   bool
	impressionSent bool
	closed         bool
	visibleSince   time.Time

	renderTimer   platform.Timer
	fallbackTimer platform.Timer
}

func NewController(cfg Config, clock platform.Clock, tracker Tracker, hints platform.NetworkHints, cb Callbacks) *Controller {
	if cfg.MinViewable <= 0 {
		cfg.MinViewable = DefaultMinViewable
	}
	if hints == nil {
		hints = platform.NoHints{}
	}
	return &Controller{
		cfg:     cfg,
		clock:   clock,
		tracker: tracker,
		cb:      cb,
		hints:   hints,
	}
}

// HandleEnter is called when the unit crosses the intersection threshold
// into the viewport.
func (c *Controller) HandleEnter() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	c.visible = true
	c.visibleSince = c.clock.Now()

	if !c.shouldRender && c.renderTimer == nil {
		if c.cfg.LoadDelay > 0 {
			c.renderTimer = c.clock.AfterFunc(c.cfg.LoadDelay, func() {
				c.mu.Lock()
				c.renderTimer = nil
				c.startRenderLocked()
				c.mu.Unlock()
			})
		} else {
			c.startRenderLocked()
		}
	}

	onVisible := c.cb.OnVisible
	c.mu.Unlock()

	if onVisible != nil {
		onVisible()
	}
}

// startRenderLocked flips shouldRender and arms the fallback timeout.
// Caller must hold the lock.
func (c *Controller) startRenderLocked() {
	if c.closed || c.shouldRender {
		return
	}
	c.shouldRender = true

	if c.cfg.FallbackTimeout > 0 {
		c.fallbackTimer = c.clock.AfterFunc(c.cfg.FallbackTimeout, func() {
			c.mu.Lock()
			c.fallbackTimer = nil
			if c.closed || c.loaded {
				c.mu.Unlock()
				return
			}
			c.showFallback = true
			placement := c.cfg.Placement
			c.mu.Unlock()

			c.tracker.TrackFallback(placement, FallbackReasonTimeout)
		})
	}
}

// HandleExit is called when the unit leaves the viewport. A stay of at
// least MinViewable emits one viewable event with the measured duration.
func (c *Controller) HandleExit() {
	c.mu.Lock()
	if c.closed || !c.visible {
		c.mu.Unlock()
		return
	}

	c.visible = false
	duration := c.clock.Now().Sub(c.visibleSince)
	c.visibleSince = time.Time{}
	placement := c.cfg.Placement
	minViewable := c.cfg.MinViewable
	onHidden := c.cb.OnHidden
	c.mu.Unlock()

	if duration >= minViewable {
		c.tracker.TrackViewable(placement, duration)
	}
	if onHidden != nil {
		onHidden()
	}
}

// HandleLoad marks the creative loaded and emits exactly one impression per
// mount. A duplicate load signal is a no-op for counting.
func (c *Controller) HandleLoad() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	c.loaded = true
	c.showFallback = false
	if c.fallbackTimer != nil {
		c.fallbackTimer.Stop()
		c.fallbackTimer = nil
	}

	sendImpression := !c.impressionSent
	c.impressionSent = true
	cfg := c.cfg
	c.mu.Unlock()

	if sendImpression {
		c.tracker.TrackImpression(cfg.Placement, cfg.Size, cfg.Variant)
	}
}

// HandleError flips straight to the fallback state (broken image/iframe).
func (c *Controller) HandleError() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	c.loaded = false
	c.showFallback = true
	if c.fallbackTimer != nil {
		c.fallbackTimer.Stop()
		c.fallbackTimer = nil
	}
	placement := c.cfg.Placement
	c.mu.Unlock()

	c.tracker.TrackFallback(placement, FallbackReasonError)
}

// ShouldRender reports whether the unit is actually allowed to render.
// Rendering intent (the element became visible, the delay elapsed) and
// permission (no reduced-data signal) are kept separate: intent survives a
// save-data toggle.
func (c *Controller) ShouldRender() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.shouldRender {
		return false
	}
	if c.cfg.RespectSaveData && (c.hints.SaveData() || c.hints.SlowConnection()) {
		return false
	}
	return true
}

// IsVisible reports whether the unit currently intersects the viewport.
func (c *Controller) IsVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

// IsLoaded reports whether the creative load signal arrived.
func (c *Controller) IsLoaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// ShowFallback reports whether the unit is in the degraded visual state.
func (c *Controller) ShowFallback() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.showFallback
}

// Close cancels all pending timers; no state changes or telemetry happen
// after it returns.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.renderTimer != nil {
		c.renderTimer.Stop()
		c.renderTimer = nil
	}
	if c.fallbackTimer != nil {
		c.fallbackTimer.Stop()
		c.fallbackTimer = nil
	}
}
