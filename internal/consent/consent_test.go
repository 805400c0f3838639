package consent

import (
	"sync"
	"testing"
	"time"

	"FTJ-Ads-Backend/internal/domain"
	"FTJ-Ads-Backend/internal/platform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type consentRecorder struct {
	mu     sync.Mutex
	events []bool
}

func (r *consentRecorder) TrackConsentChange(advertising bool, prefs domain.ConsentPreferences) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, advertising)
}

func newConsentStore() (*Store, *platform.MemoryStore, *consentRecorder, *platform.FakeClock) {
	kv := platform.NewMemoryStore()
	clock := platform.NewFakeClock(time.Now())
	rec := &consentRecorder{}
	return NewStore(kv, clock, rec, zap.NewNop()), kv, rec, clock
}

func TestStore_DefaultAllowsAds(t *testing.T) {
	s, _, _, _ := newConsentStore()

	// No decision yet: ads and analytics run
	assert.False(t, s.HasUserConsented())
	assert.True(t, s.CanShowAds())
	assert.True(t, s.CanTrackAnalytics())
	assert.Equal(t, domain.DefaultConsentPreferences(), s.GetConsentPreferences())
}

func TestStore_RejectAllBlocksAds(t *testing.T) {
	s, _, rec, _ := newConsentStore()

	s.RejectAll()

	assert.True(t, s.HasUserConsented())
	assert.False(t, s.CanShowAds())
	assert.False(t, s.CanTrackAnalytics())

	prefs := s.GetConsentPreferences()
	assert.True(t, prefs.Necessary, "necessary can never be opted out")

	require.Len(t, rec.events, 1, "exactly one consent_change per decision")
	assert.False(t, rec.events[0])
}

func TestStore_AcceptAll(t *testing.T) {
	s, _, rec, _ := newConsentStore()

	s.AcceptAll()

	assert.True(t, s.CanShowAds())
	assert.True(t, s.CanTrackAnalytics())
	require.Len(t, rec.events, 1)
	assert.True(t, rec.events[0])
}

func TestStore_CustomPreferences(t *testing.T) {
	s, _, rec, _ := newConsentStore()

	s.SavePreferences(true, false)

	assert.False(t, s.CanShowAds())
	assert.True(t, s.CanTrackAnalytics())
	require.Len(t, rec.events, 1)
}

func TestStore_DecisionSurvivesReload(t *testing.T) {
	s, kv, _, clock := newConsentStore()
	s.RejectAll()

	// A fresh store over the same storage sees the same decision
	reloaded := NewStore(kv, clock, &consentRecorder{}, zap.NewNop())
	assert.True(t, reloaded.HasUserConsented())
	assert.False(t, reloaded.CanShowAds())
	assert.Equal(t, BannerDecided, reloaded.Banner())
}

func TestStore_CorruptStateTreatedAsUndecided(t *testing.T) {
	s, kv, _, _ := newConsentStore()
	require.NoError(t, kv.Set("ftj_ad_consent", "{not json"))

	assert.False(t, s.HasUserConsented())
	assert.True(t, s.CanShowAds())
}

func TestStore_BannerAppearsAfterDelay(t *testing.T) {
	s, _, _, clock := newConsentStore()

	s.ScheduleBanner(DefaultBannerDelay)
	assert.Equal(t, BannerUnseen, s.Banner())

	clock.Advance(DefaultBannerDelay)
	assert.Equal(t, BannerVisible, s.Banner())

	s.AcceptAll()
	assert.Equal(t, BannerDecided, s.Banner())
}

func TestStore_BannerSkippedWhenDecided(t *testing.T) {
	s, _, _, clock := newConsentStore()
	s.AcceptAll()

	s.ScheduleBanner(DefaultBannerDelay)
	clock.Advance(time.Minute)

	assert.Equal(t, BannerDecided, s.Banner(), "a decided visitor never sees the banner again")
}

func TestStore_DecisionCancelsPendingBanner(t *testing.T) {
	s, _, _, clock := newConsentStore()

	s.ScheduleBanner(DefaultBannerDelay)
	s.RejectAll()
	clock.Advance(time.Minute)

	assert.Equal(t, BannerDecided, s.Banner())
	assert.Zero(t, clock.PendingTimers())
}
