package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"FTJ-Ads-Backend/internal/analytics"
	"FTJ-Ads-Backend/internal/domain"
	"FTJ-Ads-Backend/internal/repository"
	"FTJ-Ads-Backend/internal/telemetry"

	"go.uber.org/zap"
)

// EventsHandler обработчик приема телеметрии рекламы
type EventsHandler struct {
	storage   repository.Storage
	processor *analytics.Processor
	forwarder *telemetry.Batcher // опциональный форвардер во внешнюю аналитику
	log       *zap.Logger
}

// NewEventsHandler создает новый обработчик событий
func NewEventsHandler(storage repository.Storage, processor *analytics.Processor, forwarder *telemetry.Batcher, log *zap.Logger) *EventsHandler {
	return &EventsHandler{
		storage:   storage,
		processor: processor,
		forwarder: forwarder,
		log:       log,
	}
}

// eventPayload одно событие из батча клиента
type eventPayload struct {
	Type         string         `json:"type"`
	Timestamp    int64          `json:"timestamp"` // unix milliseconds
	Placement    string         `json:"placement,omitempty"`
	Size         string         `json:"size,omitempty"`
	Variant      string         `json:"variant,omitempty"`
	ViewDuration int64          `json:"viewDuration,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// batchRequest формат батча, который шлет клиентский батчер
type batchRequest struct {
	SessionID string `json:"sessionId"`
	VisitorID string `json:"visitorId,omitempty"`
	Context   struct {
		URL       string `json:"url"`
		Referrer  string `json:"referrer"`
		Viewport  string `json:"viewport"`
		UserAgent string `json:"userAgent"`
		Timestamp int64  `json:"timestamp"`
	} `json:"context"`
	Events []eventPayload `json:"events"`
}

// CollectEvents принимает батч событий телеметрии
//
//	@Summary		Collect ad telemetry events
//	@Description	Accepts a batch of ad lifecycle events from the site
//	@Tags			Events
//	@Accept			json
//	@Produce		json
//	@Param			request	body		batchRequest		true	"Event batch"
//	@Success		202		{object}	map[string]int		"Batch accepted"
//	@Failure		400		{object}	map[string]string	"Invalid batch"
//	@Router			/api/ads/event [post]
func (h *EventsHandler) CollectEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.SessionID == "" {
		h.writeError(w, "sessionId is required", http.StatusBadRequest)
		return
	}
	if len(req.Events) == 0 {
		h.writeError(w, "events must not be empty", http.StatusBadRequest)
		return
	}

	// User-Agent из заголовка надежнее, чем из тела
	userAgent := r.UserAgent()
	if userAgent == "" {
		userAgent = req.Context.UserAgent
	}

	events := make([]*domain.AdEvent, 0, len(req.Events))
	dropped := 0
	for _, e := range req.Events {
		if !domain.EventType(e.Type).Valid() {
			dropped++
			continue
		}
		events = append(events, h.toAdEvent(req, e, userAgent))
	}

	if dropped > 0 {
		h.log.Warn("dropped events with unknown type",
			zap.Int("dropped", dropped),
			zap.String("session_id", req.SessionID))
	}
	if len(events) == 0 {
		h.writeError(w, "no valid events in batch", http.StatusBadRequest)
		return
	}

	if err := h.processor.SubmitBatch(events); err != nil {
		h.log.Error("failed to submit event batch", zap.Error(err))
		h.writeError(w, "Service overloaded", http.StatusServiceUnavailable)
		return
	}

	h.forward(req)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]int{"accepted": len(events)})
}

// forward зеркалит принятые события во внешнюю аналитику
func (h *EventsHandler) forward(req batchRequest) {
	if h.forwarder == nil {
		return
	}
	for _, e := range req.Events {
		t := domain.EventType(e.Type)
		if !t.Valid() {
			continue
		}
		h.forwarder.Track(t, domain.Placement(e.Placement), telemetry.Extra{
			Size:         e.Size,
			Variant:      e.Variant,
			ViewDuration: time.Duration(e.ViewDuration) * time.Millisecond,
			Metadata:     e.Metadata,
		})
	}
}

// toAdEvent переводит событие из wire-формата в модель хранения
func (h *EventsHandler) toAdEvent(req batchRequest, e eventPayload, userAgent string) *domain.AdEvent {
	event := &domain.AdEvent{
		Type:       e.Type,
		Placement:  e.Placement,
		SessionID:  req.SessionID,
		OccurredAt: time.UnixMilli(e.Timestamp),
	}

	if e.Size != "" {
		event.Size = &e.Size
	}
	if e.Variant != "" {
		event.Variant = &e.Variant
	}
	if e.ViewDuration > 0 {
		event.ViewDuration = &e.ViewDuration
	}
	if len(e.Metadata) > 0 {
		if raw, err := json.Marshal(e.Metadata); err == nil {
			meta := string(raw)
			event.Metadata = &meta
		}
	}
	if req.VisitorID != "" {
		event.VisitorID = &req.VisitorID
	}
	if req.Context.URL != "" {
		event.PageURL = &req.Context.URL
	}
	if req.Context.Referrer != "" {
		event.Referer = &req.Context.Referrer
	}
	if req.Context.Viewport != "" {
		event.Viewport = &req.Context.Viewport
	}
	if userAgent != "" {
		event.UserAgent = &userAgent
	}

	return event
}

// StatsResponse агрегированная статистика для админ-панели
type StatsResponse struct {
	Placement    string           `json:"placement,omitempty"`
	Since        time.Time        `json:"since"`
	ByType       map[string]int64 `json:"by_type"`
	ByPlacement  map[string]int64 `json:"by_placement,omitempty"`
	ByDevice     map[string]int64 `json:"by_device"`
	CTR          float64          `json:"ctr"`
	ViewableRate float64          `json:"viewable_rate"`
}

// GetStats возвращает агрегированную статистику событий
//
//	@Summary		Ad event statistics
//	@Description	Aggregated counts by type, placement and device
//	@Tags			Events
//	@Produce		json
//	@Security		BearerAuth
//	@Param			placement	query		string	false	"Filter by placement"
//	@Param			days		query		int		false	"Lookback window in days (default 7)"
//	@Success		200			{object}	StatsResponse
//	@Router			/api/ads/stats [get]
func (h *EventsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	placement := r.URL.Query().Get("placement")
	if placement != "" && !domain.Placement(placement).Valid() {
		h.writeError(w, "Unknown placement", http.StatusBadRequest)
		return
	}

	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 365 {
			h.writeError(w, "Invalid days parameter", http.StatusBadRequest)
			return
		}
		days = parsed
	}
	since := time.Now().AddDate(0, 0, -days)

	byType, err := h.storage.CountsByType(r.Context(), placement, since)
	if err != nil {
		h.log.Error("failed to aggregate events by type", zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	byDevice, err := h.storage.CountsByDevice(r.Context(), placement, since)
	if err != nil {
		h.log.Error("failed to aggregate events by device", zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := StatsResponse{
		Placement: placement,
		Since:     since,
		ByType:    byType,
		ByDevice:  byDevice,
	}

	if impressions := byType[string(domain.EventImpression)]; impressions > 0 {
		resp.CTR = float64(byType[string(domain.EventClick)]) / float64(impressions)
		resp.ViewableRate = float64(byType[string(domain.EventViewable)]) / float64(impressions)
	}

	// Разбивка по слотам только для общего запроса
	if placement == "" {
		byPlacement, err := h.storage.CountsByPlacement(r.Context(), since)
		if err != nil {
			h.log.Error("failed to aggregate events by placement", zap.Error(err))
			h.writeError(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		resp.ByPlacement = byPlacement
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// ListRecent возвращает последние события для отладки в админ-панели
//
//	@Summary		Recent ad events
//	@Tags			Events
//	@Produce		json
//	@Security		BearerAuth
//	@Param			limit	query		int	false	"Max events to return (default 50)"
//	@Success		200		{array}		domain.AdEvent
//	@Router			/api/ads/events/recent [get]
func (h *EventsHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 500 {
			h.writeError(w, "Invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	events, err := h.storage.ListRecentEvents(r.Context(), limit)
	if err != nil {
		h.log.Error("failed to list recent events", zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(events)
}

// writeError отправляет ошибку в JSON формате
func (h *EventsHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
