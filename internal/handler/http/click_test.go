package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"FTJ-Ads-Backend/internal/domain"
	"FTJ-Ads-Backend/internal/inventory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClickRedirectsToSmartlink(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)
	ad := ts.createAd(t, token, inventory.NewAd{
		Title:        "VPN",
		SmartlinkURL: "https://smartlink.example/vpn?sub=ftj",
		Placement:    domain.PlacementArticleMiddle,
	})

	w := ts.do(t, http.MethodGet, "/r/"+ad.ID, "", nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://smartlink.example/vpn?sub=ftj", w.Header().Get("Location"))
	assert.Equal(t, "no-referrer", w.Header().Get("Referrer-Policy"))

	// Клик фиксируется и в счетчике, и в пайплайне событий
	got, err := ts.inv.Get(ad.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Clicks)

	assert.Eventually(t, func() bool {
		events, err := ts.storage.ListRecentEvents(context.Background(), 10)
		if err != nil || len(events) == 0 {
			return false
		}
		return events[0].Type == "click" && events[0].Placement == "article_middle"
	}, time.Second, 5*time.Millisecond)
}

func TestClickUnknownAd(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/r/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodGet, "/r/", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClickInactiveAdNotRedirected(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)
	ad := ts.createAd(t, token, inventory.NewAd{
		Title:        "Paused",
		SmartlinkURL: "https://smartlink.example/paused",
		Placement:    domain.PlacementFooter,
	})

	w := ts.do(t, http.MethodPost, "/api/ads/"+ad.ID+"/toggle", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/r/"+ad.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
