package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"FTJ-Ads-Backend/internal/analytics"
	"FTJ-Ads-Backend/internal/consent"
	"FTJ-Ads-Backend/internal/domain"

	"go.uber.org/zap"
)

// ConsentHandler обработчик решений о согласии посетителей
type ConsentHandler struct {
	registry  *consent.Registry
	processor *analytics.Processor
	log       *zap.Logger
}

// NewConsentHandler создает новый обработчик согласий
func NewConsentHandler(registry *consent.Registry, processor *analytics.Processor, log *zap.Logger) *ConsentHandler {
	return &ConsentHandler{
		registry:  registry,
		processor: processor,
		log:       log,
	}
}

// consentRequest решение посетителя в wire-формате
type consentRequest struct {
	VisitorID   string `json:"visitorId"`
	SessionID   string `json:"sessionId,omitempty"`
	Analytics   bool   `json:"analytics"`
	Advertising bool   `json:"advertising"`
}

// consentResponse текущее состояние согласия посетителя
type consentResponse struct {
	HasConsented bool                      `json:"hasConsented"`
	Preferences  domain.ConsentPreferences `json:"preferences"`
}

// HandleConsent обрабатывает /api/consent с разными HTTP методами
func (h *ConsentHandler) HandleConsent(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.recordConsent(w, r)
	case http.MethodGet:
		h.getConsent(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// recordConsent фиксирует решение посетителя
//
//	@Summary		Record visitor consent decision
//	@Description	Persists the consent decision server-side; rejected advertising stops ad delivery for the visitor
//	@Tags			Consent
//	@Accept			json
//	@Produce		json
//	@Param			request	body		consentRequest		true	"Consent decision"
//	@Success		200		{object}	consentResponse
//	@Failure		400		{object}	map[string]string	"Invalid request"
//	@Router			/api/consent [post]
func (h *ConsentHandler) recordConsent(w http.ResponseWriter, r *http.Request) {
	var req consentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	prefs := domain.ConsentPreferences{
		Necessary:   true,
		Analytics:   req.Analytics,
		Advertising: req.Advertising,
	}
	if err := h.registry.Record(req.VisitorID, prefs); err != nil {
		if errors.Is(err, consent.ErrMissingVisitorID) {
			h.writeError(w, "visitorId is required", http.StatusBadRequest)
			return
		}
		h.log.Error("failed to record consent decision", zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.trackConsentChange(req)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(consentResponse{HasConsented: true, Preferences: prefs})
}

// getConsent возвращает зафиксированное решение посетителя
//
//	@Summary		Current visitor consent state
//	@Tags			Consent
//	@Produce		json
//	@Param			visitorId	query		string	true	"Visitor id"
//	@Success		200			{object}	consentResponse
//	@Router			/api/consent [get]
func (h *ConsentHandler) getConsent(w http.ResponseWriter, r *http.Request) {
	visitorID := r.URL.Query().Get("visitorId")
	if visitorID == "" {
		h.writeError(w, "visitorId is required", http.StatusBadRequest)
		return
	}

	resp := consentResponse{Preferences: domain.DefaultConsentPreferences()}
	if state, ok := h.registry.Get(visitorID); ok {
		resp.HasConsented = state.HasConsented
		resp.Preferences = state.Preferences
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// trackConsentChange отправляет событие consent_change в аналитику
func (h *ConsentHandler) trackConsentChange(req consentRequest) {
	event := &domain.AdEvent{
		Type:       string(domain.EventConsentChange),
		SessionID:  req.SessionID,
		OccurredAt: time.Now(),
	}
	if req.VisitorID != "" {
		event.VisitorID = &req.VisitorID
	}
	if raw, err := json.Marshal(map[string]bool{
		"analytics":   req.Analytics,
		"advertising": req.Advertising,
	}); err == nil {
		meta := string(raw)
		event.Metadata = &meta
	}

	if err := h.processor.SubmitBatch([]*domain.AdEvent{event}); err != nil {
		// Решение сохранено, потеря телеметрии не критична
		h.log.Warn("failed to submit consent_change event", zap.Error(err))
	}
}

// writeError отправляет ошибку в JSON формате
func (h *ConsentHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
