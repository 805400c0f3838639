package http

import (
	"net/http"
	"strings"
	"time"

	"FTJ-Ads-Backend/internal/analytics"
	"FTJ-Ads-Backend/internal/domain"
	"FTJ-Ads-Backend/internal/inventory"

	"go.uber.org/zap"
)

// ClickHandler обработчик кликов по рекламе
type ClickHandler struct {
	inventory *inventory.Store
	processor *analytics.Processor
	log       *zap.Logger
}

// NewClickHandler создает новый обработчик кликов
func NewClickHandler(inv *inventory.Store, processor *analytics.Processor, log *zap.Logger) *ClickHandler {
	return &ClickHandler{
		inventory: inv,
		processor: processor,
		log:       log,
	}
}

// HandleClick обрабатывает переход по рекламе /r/{id}
func (h *ClickHandler) HandleClick(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/r/"), "/")
	if id == "" {
		http.NotFound(w, r)
		return
	}

	ad, err := h.inventory.Get(id)
	if err != nil {
		h.log.Debug("click on unknown ad", zap.String("id", id))
		http.NotFound(w, r)
		return
	}
	if ad.Status != domain.AdStatusActive || ad.SmartlinkURL == "" {
		http.NotFound(w, r)
		return
	}

	h.inventory.RecordClick(r.Context(), id)
	h.submitClickEvent(r, ad)

	h.log.Info("ad click",
		zap.String("id", id),
		zap.String("placement", string(ad.Placement)))

	// Партнерская ссылка не должна видеть, откуда пришел переход
	w.Header().Set("Referrer-Policy", "no-referrer")
	http.Redirect(w, r, ad.SmartlinkURL, http.StatusFound)
}

// submitClickEvent отправляет серверное событие клика в пайплайн сбора
func (h *ClickHandler) submitClickEvent(r *http.Request, ad *domain.Ad) {
	event := &domain.AdEvent{
		Type:       string(domain.EventClick),
		Placement:  string(ad.Placement),
		SessionID:  sessionIDFrom(r),
		OccurredAt: time.Now(),
	}
	if ua := r.UserAgent(); ua != "" {
		event.UserAgent = &ua
	}
	if ref := r.Referer(); ref != "" {
		event.Referer = &ref
	}

	if err := h.processor.SubmitBatch([]*domain.AdEvent{event}); err != nil {
		// Потеря одного клика не должна ломать редирект
		h.log.Warn("failed to submit click event", zap.Error(err))
	}
}
