package http

import (
	"encoding/json"
	"net/http"
	"time"

	"FTJ-Ads-Backend/internal/analytics"
	"FTJ-Ads-Backend/internal/database"
	"FTJ-Ads-Backend/internal/inventory"
	"FTJ-Ads-Backend/internal/service"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HealthHandler обработчик health checks
type HealthHandler struct {
	db        *gorm.DB
	inventory *inventory.Store
	processor *analytics.Processor
	delivery  *service.DeliveryService
	log       *zap.Logger
}

// NewHealthHandler создает новый health handler
func NewHealthHandler(db *gorm.DB, inv *inventory.Store, processor *analytics.Processor, delivery *service.DeliveryService, log *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:        db,
		inventory: inv,
		processor: processor,
		delivery:  delivery,
		log:       log,
	}
}

// HealthResponse структура ответа health check
type HealthResponse struct {
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	Version        string    `json:"version"`
	DatabaseStatus string    `json:"database_status"`
	UpstreamStatus string    `json:"upstream_status"`
	Uptime         string    `json:"uptime,omitempty"`
}

var startTime = time.Now()

// Health основной health check endpoint
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	dbStatus := "healthy"
	if err := database.HealthCheck(h.db); err != nil {
		dbStatus = "unhealthy"
		h.log.Error("database health check failed", zap.Error(err))
	}

	// Потеря связи с backing store не делает сервис нездоровым:
	// выдача продолжается из локального зеркала
	upstreamStatus := "connected"
	if !h.inventory.Connected() {
		upstreamStatus = "local_only"
	}

	status := "healthy"
	statusCode := http.StatusOK
	if dbStatus == "unhealthy" {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:         status,
		Timestamp:      time.Now(),
		Version:        "1.0.0",
		DatabaseStatus: dbStatus,
		UpstreamStatus: upstreamStatus,
		Uptime:         time.Since(startTime).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("failed to encode health response", zap.Error(err))
	}

	if status != "healthy" {
		h.log.Warn("health check failed", zap.String("database_status", dbStatus))
	}
}

// Ready readiness probe endpoint
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	// Сервис готов, когда инвентарь загружен (из сети или из зеркала)
	if h.inventory.Loading() {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "loading"})
		return
	}

	response := map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("failed to encode ready response", zap.Error(err))
	}
}

// Metrics простой endpoint с метриками (может быть расширен)
func (h *HealthHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	metrics := map[string]interface{}{
		"uptime_seconds":     time.Since(startTime).Seconds(),
		"timestamp":          time.Now(),
		"version":            "1.0.0",
		"inventory_size":     len(h.inventory.List()),
		"upstream_connected": h.inventory.Connected(),
		"active_sessions":    h.delivery.ActiveSessions(),
		"collector":          h.processor.GetStats(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(metrics); err != nil {
		h.log.Error("failed to encode metrics response", zap.Error(err))
	}
}
