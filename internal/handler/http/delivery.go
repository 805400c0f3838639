package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"FTJ-Ads-Backend/internal/domain"
	"FTJ-Ads-Backend/internal/rotation"
	"FTJ-Ads-Backend/internal/service"

	"go.uber.org/zap"
)

// DeliveryHandler обработчик выдачи рекламы по слотам
type DeliveryHandler struct {
	delivery *service.DeliveryService
	log      *zap.Logger
}

// NewDeliveryHandler создает новый обработчик выдачи
func NewDeliveryHandler(delivery *service.DeliveryService, log *zap.Logger) *DeliveryHandler {
	return &DeliveryHandler{
		delivery: delivery,
		log:      log,
	}
}

// HandlePlacement маршрутизирует /api/placements/{placement}/{action}
func (h *DeliveryHandler) HandlePlacement(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/placements/"), "/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 {
		http.NotFound(w, r)
		return
	}
	placement := domain.Placement(parts[0])

	switch parts[1] {
	case "ad":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.getAd(w, r, placement)
	case "close":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.close(w, r, placement)
	default:
		http.NotFound(w, r)
	}
}

// getAd решает, какую рекламу показать слоту
//
//	@Summary		Get ad for placement
//	@Description	Returns the ad a placement should show for this session
//	@Tags			Delivery
//	@Produce		json
//	@Param			placement	path		string	true	"Placement name"
//	@Param			session		query		string	true	"Session id"
//	@Param			visitor		query		string	false	"Visitor id"
//	@Success		200			{object}	service.Decision
//	@Failure		204			{string}	string	"No ad available"
//	@Failure		400			{object}	map[string]string	"Unknown placement"
//	@Router			/api/placements/{placement}/ad [get]
func (h *DeliveryHandler) getAd(w http.ResponseWriter, r *http.Request, placement domain.Placement) {
	sessionID := sessionIDFrom(r)
	if sessionID == "" {
		h.writeError(w, "session is required", http.StatusBadRequest)
		return
	}
	visitorID := r.URL.Query().Get("visitor")
	if visitorID == "" {
		visitorID = sessionID
	}

	decision, err := h.delivery.Decide(sessionID, visitorID, placement)
	if err != nil {
		if errors.Is(err, service.ErrUnknownPlacement) {
			h.writeError(w, "Unknown placement", http.StatusBadRequest)
			return
		}
		// Пустой слот не ошибка: страница просто не рендерит блок
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	json.NewEncoder(w).Encode(decision)
}

// close фиксирует закрытие рекламы пользователем
//
//	@Summary		Dismiss placement
//	@Description	Marks the placement closed for the session (24h for sticky)
//	@Tags			Delivery
//	@Param			placement	path	string	true	"Placement name"
//	@Param			session		query	string	true	"Session id"
//	@Success		204
//	@Router			/api/placements/{placement}/close [post]
func (h *DeliveryHandler) close(w http.ResponseWriter, r *http.Request, placement domain.Placement) {
	if !placement.Valid() {
		h.writeError(w, "Unknown placement", http.StatusBadRequest)
		return
	}
	sessionID := sessionIDFrom(r)
	if sessionID == "" {
		h.writeError(w, "session is required", http.StatusBadRequest)
		return
	}

	h.delivery.MarkDismissed(sessionID, placement)
	w.WriteHeader(http.StatusNoContent)
}

// InjectRequest запрос вставки рекламных слотов в HTML статьи
type InjectRequest struct {
	HTML            string `json:"html"`
	Disabled        bool   `json:"disabled,omitempty"`
	AfterParagraphs []int  `json:"afterParagraphs,omitempty"`
}

// InjectResponse ответ со вставленными слотами
type InjectResponse struct {
	HTML  string `json:"html"`
	Slots int    `json:"slots"`
}

// InjectContent вставляет рекламные слоты в HTML статьи
//
//	@Summary		Inject ad slots into article HTML
//	@Description	Places slot markers after the configured paragraphs plus one trailing slot
//	@Tags			Delivery
//	@Accept			json
//	@Produce		json
//	@Param			request	body		InjectRequest	true	"Article HTML"
//	@Success		200		{object}	InjectResponse
//	@Router			/api/content/inject [post]
func (h *DeliveryHandler) InjectContent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req InjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	html, slots := rotation.InjectIntoHTML(req.HTML, rotation.InjectOptions{
		Disabled:        req.Disabled,
		AfterParagraphs: req.AfterParagraphs,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(InjectResponse{HTML: html, Slots: slots})
}

// sessionIDFrom берет session id из query или заголовка
func sessionIDFrom(r *http.Request) string {
	if s := r.URL.Query().Get("session"); s != "" {
		return s
	}
	return r.Header.Get("X-Session-ID")
}

// writeError отправляет ошибку в JSON формате
func (h *DeliveryHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
