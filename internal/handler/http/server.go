package http

import (
	"net/http"

	"FTJ-Ads-Backend/internal/analytics"
	"FTJ-Ads-Backend/internal/auth"
	"FTJ-Ads-Backend/internal/consent"
	"FTJ-Ads-Backend/internal/inventory"
	"FTJ-Ads-Backend/internal/repository"
	"FTJ-Ads-Backend/internal/service"
	"FTJ-Ads-Backend/internal/telemetry"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Server HTTP сервер с обработчиками
type Server struct {
	authHandler     *auth.AuthHandler
	adsHandler      *AdsHandler
	eventsHandler   *EventsHandler
	consentHandler  *ConsentHandler
	deliveryHandler *DeliveryHandler
	clickHandler    *ClickHandler
	healthHandler   *HealthHandler
	authMiddleware  *auth.Middleware
	log             *zap.Logger
}

// NewServer создает новый HTTP сервер
func NewServer(
	db *gorm.DB,
	storage repository.Storage,
	inv *inventory.Store,
	delivery *service.DeliveryService,
	consents *consent.Registry,
	processor *analytics.Processor,
	forwarder *telemetry.Batcher,
	jwtService *auth.JWTService,
	creds auth.AdminCredentials,
	allowedOrigins []string,
	log *zap.Logger,
) *Server {
	// Создаем handlers
	authHandler := auth.NewAuthHandler(jwtService, creds, log)
	adsHandler := NewAdsHandler(inv, log)
	eventsHandler := NewEventsHandler(storage, processor, forwarder, log)
	consentHandler := NewConsentHandler(consents, processor, log)
	deliveryHandler := NewDeliveryHandler(delivery, log)
	clickHandler := NewClickHandler(inv, processor, log)
	healthHandler := NewHealthHandler(db, inv, processor, delivery, log)

	// Создаем middleware
	authMiddleware := auth.NewMiddleware(jwtService, allowedOrigins, log)

	return &Server{
		authHandler:     authHandler,
		adsHandler:      adsHandler,
		eventsHandler:   eventsHandler,
		consentHandler:  consentHandler,
		deliveryHandler: deliveryHandler,
		clickHandler:    clickHandler,
		healthHandler:   healthHandler,
		authMiddleware:  authMiddleware,
		log:             log,
	}
}

// SetupRoutes настраивает маршруты
func (s *Server) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	// Health checks (без аутентификации)
	mux.HandleFunc("/health", s.healthHandler.Health)
	mux.HandleFunc("/ready", s.healthHandler.Ready)
	mux.HandleFunc("/metrics", s.healthHandler.Metrics)

	// Swagger документация
	mux.Handle("/api/v1/", httpSwagger.WrapHandler)

	// Auth endpoint (без аутентификации)
	mux.HandleFunc("/api/auth/login", s.withCORS(s.authHandler.Login))

	// Публичные endpoints для сайта
	mux.HandleFunc("/api/ads/event", s.withCORS(s.eventsHandler.CollectEvents))
	mux.HandleFunc("/api/consent", s.withCORS(s.consentHandler.HandleConsent))
	mux.HandleFunc("/api/placements/", s.withCORS(s.deliveryHandler.HandlePlacement))
	mux.HandleFunc("/api/content/inject", s.withCORS(s.deliveryHandler.InjectContent))

	// Админские endpoints (с аутентификацией)
	mux.HandleFunc("/api/ads/stats", s.withCORS(s.authMiddleware.RequireAuth(s.eventsHandler.GetStats)))
	mux.HandleFunc("/api/ads/events/recent", s.withCORS(s.authMiddleware.RequireAuth(s.eventsHandler.ListRecent)))
	mux.HandleFunc("/api/ads", s.withCORS(s.authMiddleware.RequireAuth(s.handleAdsAPI)))
	mux.HandleFunc("/api/ads/", s.withCORS(s.authMiddleware.RequireAuth(s.adsHandler.HandleAdByID)))

	// Click redirect endpoint (без аутентификации)
	mux.HandleFunc("/r/", s.clickHandler.HandleClick)

	return mux
}

// handleAdsAPI обрабатывает /api/ads с разными HTTP методами
func (s *Server) handleAdsAPI(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.adsHandler.ListAds(w, r)
	case http.MethodPost:
		s.adsHandler.CreateAd(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// withCORS добавляет CORS headers к обработчику
func (s *Server) withCORS(handler http.HandlerFunc) http.HandlerFunc {
	return s.authMiddleware.CORS(handler)
}
