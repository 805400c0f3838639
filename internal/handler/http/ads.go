package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"FTJ-Ads-Backend/internal/domain"
	"FTJ-Ads-Backend/internal/inventory"

	"go.uber.org/zap"
)

// AdsHandler обработчик управления инвентарем рекламы
type AdsHandler struct {
	inventory *inventory.Store
	log       *zap.Logger
}

// NewAdsHandler создает новый обработчик инвентаря
func NewAdsHandler(inv *inventory.Store, log *zap.Logger) *AdsHandler {
	return &AdsHandler{
		inventory: inv,
		log:       log,
	}
}

// AdResponse ответ с рекламой и признаком, куда применилась операция
type AdResponse struct {
	Ad      *domain.Ad `json:"ad"`
	Applied string     `json:"applied"` // "remote" или "local"
}

// ListAdsResponse ответ списка инвентаря
type ListAdsResponse struct {
	Ads       []*domain.Ad `json:"ads"`
	Connected bool         `json:"connected"` // связь с backing store
}

// ListAds возвращает весь инвентарь
//
//	@Summary		List ads
//	@Description	Returns the full ad inventory
//	@Tags			Ads
//	@Produce		json
//	@Security		BearerAuth
//	@Param			placement	query		string	false	"Filter by placement"
//	@Success		200			{object}	ListAdsResponse
//	@Router			/api/ads [get]
func (h *AdsHandler) ListAds(w http.ResponseWriter, r *http.Request) {
	placement := r.URL.Query().Get("placement")

	var ads []*domain.Ad
	if placement != "" {
		if !domain.Placement(placement).Valid() {
			h.writeError(w, "Unknown placement", http.StatusBadRequest)
			return
		}
		ads = h.inventory.ByPlacement(domain.Placement(placement))
	} else {
		ads = h.inventory.List()
	}

	h.writeJSON(w, http.StatusOK, ListAdsResponse{
		Ads:       ads,
		Connected: h.inventory.Connected(),
	})
}

// CreateAd создает новую рекламу
//
//	@Summary		Create ad
//	@Tags			Ads
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		inventory.NewAd	true	"New ad"
//	@Success		201		{object}	AdResponse
//	@Failure		400		{object}	map[string]string	"Validation error"
//	@Router			/api/ads [post]
func (h *AdsHandler) CreateAd(w http.ResponseWriter, r *http.Request) {
	var req inventory.NewAd
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ad, applied, err := h.inventory.Add(r.Context(), req)
	if err != nil {
		h.writeValidationError(w, err)
		return
	}

	h.log.Info("ad created",
		zap.String("id", ad.ID),
		zap.String("placement", string(ad.Placement)),
		zap.String("applied", applied.String()))

	h.writeJSON(w, http.StatusCreated, AdResponse{Ad: ad, Applied: applied.String()})
}

// HandleAdByID маршрутизирует /api/ads/{id} по HTTP методам
func (h *AdsHandler) HandleAdByID(w http.ResponseWriter, r *http.Request) {
	id, action := splitAdPath(r.URL.Path)
	if id == "" {
		h.writeError(w, "Ad id is required", http.StatusBadRequest)
		return
	}

	// POST /api/ads/{id}/toggle переключает статус
	if action == "toggle" {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.toggleStatus(w, r, id)
		return
	}
	if action != "" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getAd(w, r, id)
	case http.MethodPut:
		h.updateAd(w, r, id)
	case http.MethodDelete:
		h.deleteAd(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// getAd возвращает одну рекламу
func (h *AdsHandler) getAd(w http.ResponseWriter, r *http.Request, id string) {
	ad, err := h.inventory.Get(id)
	if err != nil {
		h.writeError(w, "Ad not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, ad)
}

// updateAd обновляет рекламу
//
//	@Summary		Update ad
//	@Tags			Ads
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string			true	"Ad id"
//	@Param			request	body		inventory.Patch	true	"Fields to update"
//	@Success		200		{object}	AdResponse
//	@Router			/api/ads/{id} [put]
func (h *AdsHandler) updateAd(w http.ResponseWriter, r *http.Request, id string) {
	var patch inventory.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ad, applied, err := h.inventory.Update(r.Context(), id, patch)
	if err != nil {
		if errors.Is(err, inventory.ErrAdNotFound) {
			h.writeError(w, "Ad not found", http.StatusNotFound)
			return
		}
		h.writeValidationError(w, err)
		return
	}

	h.log.Info("ad updated", zap.String("id", id), zap.String("applied", applied.String()))
	h.writeJSON(w, http.StatusOK, AdResponse{Ad: ad, Applied: applied.String()})
}

// toggleStatus переключает active/inactive
func (h *AdsHandler) toggleStatus(w http.ResponseWriter, r *http.Request, id string) {
	ad, applied, err := h.inventory.ToggleStatus(r.Context(), id)
	if err != nil {
		if errors.Is(err, inventory.ErrAdNotFound) {
			h.writeError(w, "Ad not found", http.StatusNotFound)
			return
		}
		h.log.Error("failed to toggle ad status", zap.String("id", id), zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.log.Info("ad status toggled",
		zap.String("id", id),
		zap.String("status", string(ad.Status)),
		zap.String("applied", applied.String()))

	h.writeJSON(w, http.StatusOK, AdResponse{Ad: ad, Applied: applied.String()})
}

// deleteAd удаляет рекламу
//
//	@Summary		Delete ad
//	@Tags			Ads
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Ad id"
//	@Success		200	{object}	map[string]string
//	@Router			/api/ads/{id} [delete]
func (h *AdsHandler) deleteAd(w http.ResponseWriter, r *http.Request, id string) {
	applied, err := h.inventory.Remove(r.Context(), id)
	if err != nil {
		if errors.Is(err, inventory.ErrAdNotFound) {
			h.writeError(w, "Ad not found", http.StatusNotFound)
			return
		}
		h.log.Error("failed to delete ad", zap.String("id", id), zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.log.Info("ad deleted", zap.String("id", id), zap.String("applied", applied.String()))
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "applied": applied.String()})
}

// splitAdPath выделяет id и действие из /api/ads/{id}[/{action}]
func splitAdPath(path string) (id, action string) {
	rest := strings.TrimPrefix(path, "/api/ads/")
	parts := strings.SplitN(strings.Trim(rest, "/"), "/", 2)
	if len(parts) > 0 {
		id = parts[0]
	}
	if len(parts) > 1 {
		action = parts[1]
	}
	return id, action
}

// writeValidationError переводит доменные ошибки в HTTP статусы
func (h *AdsHandler) writeValidationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrAdMissingTitle),
		errors.Is(err, domain.ErrAdMissingSmartlink),
		errors.Is(err, domain.ErrAdUnknownPlacement):
		h.writeError(w, err.Error(), http.StatusBadRequest)
	default:
		h.log.Error("inventory operation failed", zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
	}
}

// writeJSON отправляет JSON ответ
func (h *AdsHandler) writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error("failed to encode response", zap.Error(err))
	}
}

// writeError отправляет ошибку в JSON формате
func (h *AdsHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	h.writeJSON(w, statusCode, map[string]string{"error": message})
}
