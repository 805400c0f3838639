package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int       { return &i }
func int64Ptr(i int64) *int64 { return &i }
func strPtr(s string) *string { return &s }

func TestNormalizeWireAd(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	ad, err := NormalizeWireAd(WireAd{
		ID:           "ad-1",
		Title:        "VPN Deal",
		SmartlinkURL: "https://smartlink.example/vpn",
		Placement:    "article_top",
		Priority:     intPtr(7),
		Impressions:  int64Ptr(120),
		Clicks:       int64Ptr(4),
	}, now)
	require.NoError(t, err)

	assert.Equal(t, "ad-1", ad.ID)
	assert.Equal(t, PlacementArticleTop, ad.Placement)
	assert.Equal(t, AdStatusActive, ad.Status, "missing status defaults to active")
	assert.Equal(t, 7, ad.Priority)
	assert.Equal(t, int64(120), ad.Impressions)
	assert.Equal(t, now, ad.CreatedAt)
}

func TestNormalizeWireAdMongoID(t *testing.T) {
	ad, err := NormalizeWireAd(WireAd{
		MongoID:      "65f2a9",
		Title:        "Hosted",
		SmartlinkURL: "https://smartlink.example/h",
		Placement:    "footer",
	}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, "65f2a9", ad.ID, "_id is used when id is missing")
	assert.Equal(t, "65f2a9", ad.RemoteID)
}

func TestNormalizeWireAdTimestamps(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	ad, err := NormalizeWireAd(WireAd{
		ID:           "ad-1",
		Title:        "T",
		SmartlinkURL: "https://s.example/",
		Placement:    "footer",
		CreatedAt:    strPtr("2025-06-01T10:00:00Z"),
		UpdatedAt:    strPtr("not-a-date"),
	}, now)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC), ad.CreatedAt)
	assert.Equal(t, now, ad.UpdatedAt, "unparseable timestamp falls back to now")
}

func TestNormalizeWireAdRejectsBadRecords(t *testing.T) {
	now := time.Now()

	_, err := NormalizeWireAd(WireAd{SmartlinkURL: "https://s.example/", Placement: "footer"}, now)
	assert.ErrorIs(t, err, ErrAdMissingTitle)

	_, err = NormalizeWireAd(WireAd{Title: "T", Placement: "footer"}, now)
	assert.ErrorIs(t, err, ErrAdMissingSmartlink)

	_, err = NormalizeWireAd(WireAd{Title: "T", SmartlinkURL: "https://s.example/", Placement: "interstitial"}, now)
	assert.ErrorIs(t, err, ErrAdUnknownPlacement)

	_, err = NormalizeWireAd(WireAd{Title: "   ", SmartlinkURL: "https://s.example/", Placement: "footer"}, now)
	assert.ErrorIs(t, err, ErrAdMissingTitle)
}

func TestNormalizeWireAdInactiveStatus(t *testing.T) {
	ad, err := NormalizeWireAd(WireAd{
		ID:           "ad-1",
		Title:        "T",
		SmartlinkURL: "https://s.example/",
		Placement:    "footer",
		Status:       "inactive",
	}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, AdStatusInactive, ad.Status)
	assert.False(t, ad.IsActive())
}

func TestPlacementValid(t *testing.T) {
	for _, p := range AllPlacements {
		assert.True(t, p.Valid(), string(p))
	}
	assert.False(t, Placement("popup").Valid())
	assert.False(t, Placement("").Valid())
}

func TestEventTypeValid(t *testing.T) {
	for _, et := range KnownEventTypes {
		assert.True(t, et.Valid(), string(et))
	}
	assert.False(t, EventType("page_scrolled").Valid())
	assert.False(t, EventType("").Valid())
}
