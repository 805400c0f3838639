package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"FTJ-Ads-Backend/internal/domain"
	"FTJ-Ads-Backend/internal/inventory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordConsentRejectionStopsDelivery(t *testing.T) {
	ts := newTestServer(t)

	_, _, err := ts.inv.Add(context.Background(), inventory.NewAd{
		Title:        "Banner",
		SmartlinkURL: "https://smartlink.example/banner",
		Placement:    domain.PlacementArticleTop,
	})
	require.NoError(t, err)

	// До решения посетитель получает рекламу
	w := ts.do(t, http.MethodGet, "/api/placements/article_top/ad?session=s1&visitor=v1", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPost, "/api/consent", "", map[string]any{
		"visitorId":   "v1",
		"sessionId":   "s1",
		"analytics":   true,
		"advertising": false,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var resp consentResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.HasConsented)
	assert.False(t, resp.Preferences.Advertising)

	// После отказа доставка для посетителя прекращается
	w = ts.do(t, http.MethodGet, "/api/placements/article_top/ad?session=s1&visitor=v1", "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// Другие посетители не затронуты
	w = ts.do(t, http.MethodGet, "/api/placements/article_top/ad?session=s2&visitor=v2", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Решение отражается в телеметрии
	assert.Eventually(t, func() bool {
		events, err := ts.storage.ListRecentEvents(context.Background(), 10)
		if err != nil {
			return false
		}
		for _, e := range events {
			if e.Type == string(domain.EventConsentChange) {
				return e.VisitorID != nil && *e.VisitorID == "v1"
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRecordConsentAcceptanceKeepsDelivery(t *testing.T) {
	ts := newTestServer(t)

	_, _, err := ts.inv.Add(context.Background(), inventory.NewAd{
		Title:        "Banner",
		SmartlinkURL: "https://smartlink.example/banner",
		Placement:    domain.PlacementFooter,
	})
	require.NoError(t, err)

	w := ts.do(t, http.MethodPost, "/api/consent", "", map[string]any{
		"visitorId":   "v1",
		"advertising": true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/api/placements/footer/ad?session=s1&visitor=v1", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecordConsentValidation(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/consent", "", map[string]any{
		"advertising": false,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodDelete, "/api/consent", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestGetConsentState(t *testing.T) {
	ts := newTestServer(t)

	// Без решения отдается дефолт
	w := ts.do(t, http.MethodGet, "/api/consent?visitorId=v1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp consentResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.False(t, resp.HasConsented)
	assert.Equal(t, domain.DefaultConsentPreferences(), resp.Preferences)

	require.NoError(t, ts.consents.Record("v1", domain.ConsentPreferences{Advertising: true}))

	w = ts.do(t, http.MethodGet, "/api/consent?visitorId=v1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.HasConsented)
	assert.True(t, resp.Preferences.Advertising)

	w = ts.do(t, http.MethodGet, "/api/consent", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
