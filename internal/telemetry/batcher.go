// Package telemetry implements the ad lifecycle event batcher: events are
// accumulated in memory and shipped to the collection endpoint in batches,
// on a timer, on a queue-size threshold, or synchronously on shutdown.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"FTJ-Ads-Backend/internal/domain"
	"FTJ-Ads-Backend/internal/platform"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config holds batcher configuration.
type Config struct {
	BatchSize     int           // flush once the queue reaches this many events
	FlushInterval time.Duration // periodic timer flush
	Endpoint      string        // collection URL
	Enabled       bool          // global kill switch
	Debug         bool          // verbose event logging
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		BatchSize:     10,
		FlushInterval: 30 * time.Second,
		Enabled:       true,
	}
}

// PageContext is the page snapshot attached to every flushed batch.
type PageContext struct {
	URL       string
	Referrer  string
	Viewport  string
	UserAgent string
}

// Event is one queued telemetry record. Events are append-only and never
// mutated after creation; ordering within a batch is insertion order.
type Event struct {
	Type         domain.EventType `json:"type"`
	Timestamp    int64            `json:"timestamp"` // unix milliseconds
	Placement    domain.Placement `json:"placement,omitempty"`
	Size         string           `json:"size,omitempty"`
	Variant      string           `json:"variant,omitempty"`
	ViewDuration int64            `json:"viewDuration,omitempty"` // milliseconds
	Metadata     map[string]any   `json:"metadata,omitempty"`
}

// Extra carries the optional attributes of a tracked event.
type Extra struct {
	Size         string
	Variant      string
	ViewDuration time.Duration
	Metadata     map[string]any
}

type batchPayload struct {
	SessionID string         `json:"sessionId"`
	Context   contextPayload `json:"context"`
	Events    []Event        `json:"events"`
}

type contextPayload struct {
	URL       string `json:"url"`
	Referrer  string `json:"referrer"`
	Viewport  string `json:"viewport"`
	UserAgent string `json:"userAgent"`
	Timestamp int64  `json:"timestamp"`
}

// Batcher accumulates events and flushes them in batches. One Batcher (one
// queue, one flush timer) exists per process; Init is idempotent and
// replaces configuration without leaking the previous timer.
type Batcher struct {
	mu        sync.Mutex
	cfg       Config
	page      PageContext
	clock     platform.Clock
	beacon    platform.Beacon
	log       *zap.Logger
	sessionID string
	queue     []Event
	timer     platform.Timer
	flushing  bool
	stopped   bool
}

// New creates a batcher. It does nothing until Init is called.
func New(clock platform.Clock, beacon platform.Beacon, log *zap.Logger) *Batcher {
	return &Batcher{
		clock:  clock,
		beacon: beacon,
		log:    log,
		// Session id is generated once per batcher lifetime and cached
		sessionID: uuid.NewString(),
	}
}

// Init applies configuration and (re)starts the periodic flush timer. Any
// prior timer is cleared first so re-initialization never leaks a second
// timer.
func (b *Batcher) Init(cfg Config, page PageContext) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}

	b.cfg = cfg
	b.page = page
	b.stopped = false

	if cfg.Enabled && cfg.FlushInterval > 0 {
		b.armTimerLocked()
	}
}

// armTimerLocked schedules the next periodic flush. Caller must hold the lock.
func (b *Batcher) armTimerLocked() {
	b.timer = b.clock.AfterFunc(b.cfg.FlushInterval, func() {
		if err := b.Flush(context.Background()); err != nil {
			b.log.Debug("periodic telemetry flush failed", zap.Error(err))
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		if !b.stopped && b.cfg.Enabled && b.cfg.FlushInterval > 0 {
			b.armTimerLocked()
		}
	})
}

// SessionID returns the per-session identifier attached to every batch.
func (b *Batcher) SessionID() string {
	return b.sessionID
}

// Track appends one event to the queue and flushes when the size threshold
// is reached.
func (b *Batcher) Track(t domain.EventType, placement domain.Placement, extra Extra) {
	b.mu.Lock()

	if !b.cfg.Enabled || b.stopped {
		b.mu.Unlock()
		return
	}

	ev := Event{
		Type:      t,
		Timestamp: b.clock.Now().UnixMilli(),
		Placement: placement,
		Size:      extra.Size,
		Variant:   extra.Variant,
		Metadata:  extra.Metadata,
	}
	if extra.ViewDuration > 0 {
		ev.ViewDuration = extra.ViewDuration.Milliseconds()
	}

	b.queue = append(b.queue, ev)
	size := len(b.queue)
	threshold := b.cfg.BatchSize
	debug := b.cfg.Debug
	b.mu.Unlock()

	if debug {
		b.log.Debug("tracked ad event",
			zap.String("type", string(t)),
			zap.String("placement", string(placement)),
			zap.Int("queue_size", size))
	}

	if threshold > 0 && size >= threshold {
		if err := b.Flush(context.Background()); err != nil {
			b.log.Debug("size-triggered telemetry flush failed", zap.Error(err))
		}
	}
}

// TrackImpression records that an ad was rendered.
func (b *Batcher) TrackImpression(placement domain.Placement, size, variant string) {
	b.Track(domain.EventImpression, placement, Extra{Size: size, Variant: variant})
}

// TrackClick records an ad click-through.
func (b *Batcher) TrackClick(placement domain.Placement, variant string, metadata map[string]any) {
	b.Track(domain.EventClick, placement, Extra{Variant: variant, Metadata: metadata})
}

// TrackViewable records that an ad stayed in the viewport for at least the
// minimum viewable duration.
func (b *Batcher) TrackViewable(placement domain.Placement, duration time.Duration) {
	b.Track(domain.EventViewable, placement, Extra{ViewDuration: duration})
}

// TrackFallback records that an ad unit degraded to its fallback state.
func (b *Batcher) TrackFallback(placement domain.Placement, reason string) {
	b.Track(domain.EventFallback, placement, Extra{Metadata: map[string]any{"reason": reason}})
}

// TrackClose records a dismissal of a sticky unit.
func (b *Batcher) TrackClose(placement domain.Placement) {
	b.Track(domain.EventClose, placement, Extra{})
}

// TrackConsentChange records a consent decision with the full preference set.
func (b *Batcher) TrackConsentChange(advertising bool, prefs domain.ConsentPreferences) {
	b.Track(domain.EventConsentChange, "", Extra{Metadata: map[string]any{
		"advertising": advertising,
		"preferences": prefs,
	}})
}

// QueueLen reports the number of queued, unflushed events.
func (b *Batcher) QueueLen() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// Flush delivers the queued events as one batch. On delivery failure the
// batch is pushed back to the FRONT of the queue so the next attempt retries
// the same events in their original relative order, ahead of newer ones.
func (b *Batcher) Flush(ctx context.Context) error {
	b.mu.Lock()
	if b.flushing || len(b.queue) == 0 || b.cfg.Endpoint == "" {
		b.mu.Unlock()
		return nil
	}
	b.flushing = true
	batch := b.queue
	b.queue = nil
	endpoint := b.cfg.Endpoint
	b.mu.Unlock()

	payload, err := b.encode(batch)
	if err != nil {
		// Should not happen; drop the batch rather than loop on it
		b.mu.Lock()
		b.flushing = false
		b.mu.Unlock()
		return fmt.Errorf("failed to encode telemetry batch: %w", err)
	}

	sendErr := b.beacon.Post(ctx, endpoint, payload)

	b.mu.Lock()
	b.flushing = false
	if sendErr != nil {
		b.queue = append(batch, b.queue...)
	}
	b.mu.Unlock()

	if sendErr != nil {
		return fmt.Errorf("failed to deliver telemetry batch: %w", sendErr)
	}

	if b.cfg.Debug {
		b.log.Debug("flushed telemetry batch", zap.Int("events", len(batch)))
	}
	return nil
}

// FlushBeacon performs the non-blocking page-hide style delivery: whatever
// is queued is sent once, the outcome is ignored and nothing is re-queued.
func (b *Batcher) FlushBeacon() {
	b.mu.Lock()
	if len(b.queue) == 0 || b.cfg.Endpoint == "" {
		b.mu.Unlock()
		return
	}
	batch := b.queue
	b.queue = nil
	endpoint := b.cfg.Endpoint
	b.mu.Unlock()

	payload, err := b.encode(batch)
	if err != nil {
		return
	}
	b.beacon.PostBeacon(endpoint, payload)
}

// Shutdown stops the flush timer and performs a final beacon send of any
// remaining events.
func (b *Batcher) Shutdown() {
	b.mu.Lock()
	b.stopped = true
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.mu.Unlock()

	b.FlushBeacon()
}

func (b *Batcher) encode(batch []Event) ([]byte, error) {
	payload := batchPayload{
		SessionID: b.sessionID,
		Context: contextPayload{
			URL:       b.page.URL,
			Referrer:  b.page.Referrer,
			Viewport:  b.page.Viewport,
			UserAgent: b.page.UserAgent,
			Timestamp: b.clock.Now().UnixMilli(),
		},
		Events: batch,
	}
	return json.Marshal(payload)
}
