// Package platform abstracts the runtime ambience the ad engine depends on:
// wall clock and timers, best-effort key-value persistence and network
// beacon delivery. The engine logic only ever talks to these interfaces, so
// it can be unit-tested without a real browser runtime or network.
package platform

import (
	"context"
	"time"
)

// Timer is a cancellable one-shot timer armed through a Clock.
type Timer interface {
	// Stop cancels the timer. It reports whether the stop prevented the
	// callback from firing.
	Stop() bool
}

// Clock provides time and timer scheduling.
type Clock interface {
	Now() time.Time
	// AfterFunc schedules fn to run once after d. The returned Timer can be
	// stopped before it fires.
	AfterFunc(d time.Duration, fn func()) Timer
}

// KeyValueStore is a best-effort string key-value storage with the same
// guarantees browser localStorage gives: writes may fail (quota, denied),
// reads on a missing key report absence, nothing is transactional.
type KeyValueStore interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// Beacon delivers telemetry payloads. Post is the normal asynchronous-path
// delivery (caller checks the error and may retry later); PostBeacon is the
// page-hide style send that never blocks the caller on the outcome.
type Beacon interface {
	Post(ctx context.Context, url string, body []byte) error
	PostBeacon(url string, body []byte)
}

// NetworkHints exposes the bandwidth/accessibility signals used to suppress
// ad rendering for visitors on constrained connections.
type NetworkHints interface {
	SaveData() bool
	SlowConnection() bool
}

// NoHints is a NetworkHints implementation that never constrains rendering.
type NoHints struct{}

func (NoHints) SaveData() bool       { return false }
func (NoHints) SlowConnection() bool { return false }
