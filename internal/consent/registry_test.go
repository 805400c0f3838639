package consent

import (
	"testing"
	"time"

	"FTJ-Ads-Backend/internal/domain"
	"FTJ-Ads-Backend/internal/platform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRegistry() (*Registry, *platform.MemoryStore) {
	kv := platform.NewMemoryStore()
	return NewRegistry(kv, platform.NewFakeClock(time.Now()), zap.NewNop()), kv
}

func TestRegistry_UndecidedVisitorGetsAds(t *testing.T) {
	r, _ := newRegistry()

	_, ok := r.Get("v1")
	assert.False(t, ok)
	assert.True(t, r.CanShowAds("v1"))
}

func TestRegistry_RejectionBlocksAds(t *testing.T) {
	r, _ := newRegistry()

	require.NoError(t, r.Record("v1", domain.ConsentPreferences{Analytics: true}))

	assert.False(t, r.CanShowAds("v1"))
	assert.True(t, r.CanShowAds("v2"), "other visitors are unaffected")

	state, ok := r.Get("v1")
	require.True(t, ok)
	assert.True(t, state.HasConsented)
	assert.True(t, state.Preferences.Necessary, "necessary can never be opted out")
	assert.True(t, state.Preferences.Analytics)
	assert.False(t, state.Preferences.Advertising)
}

func TestRegistry_AcceptanceReenablesAds(t *testing.T) {
	r, _ := newRegistry()

	require.NoError(t, r.Record("v1", domain.ConsentPreferences{}))
	assert.False(t, r.CanShowAds("v1"))

	// Decisions overwrite wholesale
	require.NoError(t, r.Record("v1", domain.ConsentPreferences{Advertising: true}))
	assert.True(t, r.CanShowAds("v1"))
}

func TestRegistry_RecordRequiresVisitorID(t *testing.T) {
	r, _ := newRegistry()

	assert.ErrorIs(t, r.Record("", domain.ConsentPreferences{}), ErrMissingVisitorID)
	assert.ErrorIs(t, r.Record("   ", domain.ConsentPreferences{}), ErrMissingVisitorID)
}

func TestRegistry_DecisionSurvivesRestart(t *testing.T) {
	r, kv := newRegistry()
	require.NoError(t, r.Record("v1", domain.ConsentPreferences{}))

	// A fresh registry over the same store still honors the rejection
	r2 := NewRegistry(kv, platform.NewFakeClock(time.Now()), zap.NewNop())
	assert.False(t, r2.CanShowAds("v1"))
}

func TestRegistry_CorruptRecordReadsAsUndecided(t *testing.T) {
	r, kv := newRegistry()
	require.NoError(t, kv.Set(registryKeyPrefix+"v1", "{not json"))

	_, ok := r.Get("v1")
	assert.False(t, ok)
	assert.True(t, r.CanShowAds("v1"))
}
