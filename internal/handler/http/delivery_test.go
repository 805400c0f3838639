package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"FTJ-Ads-Backend/internal/domain"
	"FTJ-Ads-Backend/internal/inventory"
	"FTJ-Ads-Backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPlacementAd(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)
	ad := ts.createAd(t, token, inventory.NewAd{
		Title:        "Cloud hosting",
		SmartlinkURL: "https://smartlink.example/cloud",
		Placement:    domain.PlacementArticleTop,
		Priority:     3,
	})

	w := ts.do(t, http.MethodGet, "/api/placements/article_top/ad?session=sess-1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	var decision service.Decision
	require.NoError(t, json.NewDecoder(w.Body).Decode(&decision))
	require.NotNil(t, decision.Ad)
	assert.Equal(t, ad.ID, decision.Ad.ID)
	assert.Equal(t, 1, decision.RotationCount)
	assert.NotEmpty(t, decision.Variant)
}

func TestGetPlacementAdSessionHeader(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)
	ts.createAd(t, token, inventory.NewAd{
		Title:        "Ad",
		SmartlinkURL: "https://smartlink.example/a",
		Placement:    domain.PlacementFooter,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/placements/footer/ad", nil)
	req.Header.Set("X-Session-ID", "sess-h")
	w := serveRequest(ts, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetPlacementAdErrors(t *testing.T) {
	ts := newTestServer(t)

	// Неизвестный слот
	w := ts.do(t, http.MethodGet, "/api/placements/popup/ad?session=sess-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Нет session
	w = ts.do(t, http.MethodGet, "/api/placements/article_top/ad", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Пустой инвентарь: слот просто не рендерится
	w = ts.do(t, http.MethodGet, "/api/placements/article_top/ad?session=sess-1", "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestClosePlacement(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)
	ts.createAd(t, token, inventory.NewAd{
		Title:        "Sticky",
		SmartlinkURL: "https://smartlink.example/s",
		Placement:    domain.PlacementMobileSticky,
	})

	w := ts.do(t, http.MethodGet, "/api/placements/mobile_sticky/ad?session=sess-1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPost, "/api/placements/mobile_sticky/close?session=sess-1", "", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	// Закрытый слот больше ничего не отдает этой сессии
	w = ts.do(t, http.MethodGet, "/api/placements/mobile_sticky/ad?session=sess-1", "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// Другая сессия не затронута
	w = ts.do(t, http.MethodGet, "/api/placements/mobile_sticky/ad?session=sess-2", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPlacementRouting(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/placements/article_top", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodGet, "/api/placements/article_top/unknown?session=s", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodPost, "/api/placements/article_top/ad?session=s", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = ts.do(t, http.MethodGet, "/api/placements/article_top/close?session=s", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestInjectContent(t *testing.T) {
	ts := newTestServer(t)

	var html strings.Builder
	for i := 0; i < 8; i++ {
		html.WriteString("<p>paragraph</p>")
	}

	w := ts.do(t, http.MethodPost, "/api/content/inject", "", InjectRequest{HTML: html.String()})
	require.Equal(t, http.StatusOK, w.Code)

	var resp InjectResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 3, resp.Slots)
	assert.Contains(t, resp.HTML, "data-slot")
}

func TestInjectContentDisabled(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/content/inject", "", InjectRequest{
		HTML:     "<p>one</p><p>two</p><p>three</p><p>four</p>",
		Disabled: true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp InjectResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 0, resp.Slots)
	assert.NotContains(t, resp.HTML, "data-slot")
}
