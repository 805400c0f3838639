package rotation

import (
	"strconv"
	"time"

	"FTJ-Ads-Backend/internal/platform"

	"go.uber.org/zap"
)

// StickyDismissTTL is how long the global sticky banner stays dismissed,
// compared against a stored timestamp rather than a session flag.
const StickyDismissTTL = 24 * time.Hour

const (
	sessionDismissPrefix = "ftj_ad_dismissed_"
	stickyDismissPrefix  = "ftj_sticky_dismissed_"
)

// DismissalStore persists the one-time-per-session dismissals of sticky
// units. In-page units use a plain per-session flag; the global sticky
// banner uses a timestamp with a real-world TTL.
type DismissalStore struct {
	session platform.KeyValueStore // cleared when the browser session ends
	durable platform.KeyValueStore // survives the session
	clock   platform.Clock
	log     *zap.Logger
}

func NewDismissalStore(session, durable platform.KeyValueStore, clock platform.Clock, log *zap.Logger) *DismissalStore {
	return &DismissalStore{
		session: session,
		durable: durable,
		clock:   clock,
		log:     log,
	}
}

// SessionDismissed reports whether the unit was dismissed this session.
func (d *DismissalStore) SessionDismissed(key string) bool {
	_, ok := d.session.Get(sessionDismissPrefix + key)
	return ok
}

// DismissSession records a per-session dismissal.
func (d *DismissalStore) DismissSession(key string) {
	if err := d.session.Set(sessionDismissPrefix+key, "1"); err != nil {
		d.log.Warn("failed to persist session dismissal", zap.String("key", key), zap.Error(err))
	}
}

// StickyDismissed reports whether the global sticky dismissal is still in
// effect. An expired timestamp counts as absent and is cleaned up.
func (d *DismissalStore) StickyDismissed(key string) bool {
	raw, ok := d.durable.Get(stickyDismissPrefix + key)
	if !ok {
		return false
	}

	dismissedAt, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		_ = d.durable.Delete(stickyDismissPrefix + key)
		return false
	}

	if d.clock.Now().Sub(time.UnixMilli(dismissedAt)) >= StickyDismissTTL {
		_ = d.durable.Delete(stickyDismissPrefix + key)
		return false
	}

	return true
}

// DismissSticky records a dismissal of the global sticky banner with the
// current timestamp.
func (d *DismissalStore) DismissSticky(key string) {
	now := strconv.FormatInt(d.clock.Now().UnixMilli(), 10)
	if err := d.durable.Set(stickyDismissPrefix+key, now); err != nil {
		d.log.Warn("failed to persist sticky dismissal", zap.String("key", key), zap.Error(err))
	}
}
