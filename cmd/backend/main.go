// Package main provides the entry point for the FTJ ads service.
//
//	@title			FTJ Ads API
//	@version		1.0.0
//	@description	Ad delivery, inventory and telemetry collection service for Future Tech Journal.
//
//	@contact.name	FTJ Support
//	@contact.email	support@futuretechjournal.com
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Authorization header. Format: "Bearer {token}"
package main

import (
	"FTJ-Ads-Backend/internal/abtest"
	"FTJ-Ads-Backend/internal/analytics"
	"FTJ-Ads-Backend/internal/auth"
	"FTJ-Ads-Backend/internal/config"
	"FTJ-Ads-Backend/internal/consent"
	"FTJ-Ads-Backend/internal/database"
	httpHandler "FTJ-Ads-Backend/internal/handler/http"
	"FTJ-Ads-Backend/internal/inventory"
	"FTJ-Ads-Backend/internal/platform"
	"FTJ-Ads-Backend/internal/repository/postgres"
	"FTJ-Ads-Backend/internal/rotation"
	"FTJ-Ads-Backend/internal/service"
	"FTJ-Ads-Backend/internal/telemetry"
	"FTJ-Ads-Backend/pkg/logger"
	"FTJ-Ads-Backend/pkg/useragent"
	"context"
	"fmt"
	lg "log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "FTJ-Ads-Backend/docs" // Import swagger docs
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)
	defer func() {
		if err := log.Sync(); err != nil {
			lg.Printf("ERROR: failed to sync zap logger: %v\n", err)
		}
	}()

	log.Info("starting FTJ ads service", zap.String("env", cfg.Env))

	// Initialize database connection
	db, err := database.NewConnection(&cfg.Database, cfg.Env, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, log); err != nil {
			log.Error("failed to close database connection", zap.Error(err))
		}
	}()

	// Run database migrations if enabled
	if cfg.Database.AutoMigrate {
		log.Info("running database migrations (auto_migrate: true)")
		if err := database.AutoMigrate(db, log); err != nil {
			log.Fatal("failed to run database migrations", zap.Error(err))
		}
	} else {
		log.Info("skipping database migrations (auto_migrate: false)")
	}

	// Seed placement reference data if enabled
	if cfg.Database.SeedData {
		if err := database.SeedData(db, log); err != nil {
			log.Fatal("failed to seed database", zap.Error(err))
		}
	}

	// Initialize User-Agent parser
	if err := useragent.InitGlobalParser(cfg.Collector.RegexesPath, log); err != nil {
		log.Warn("failed to initialize User-Agent parser, using fallback", zap.Error(err))
	}

	// Initialize storage and the event collection pipeline
	storage := postgres.New(db, log)
	processor := analytics.NewProcessor(storage, log, analytics.ProcessorConfig{
		WorkerCount:     cfg.Collector.Workers,
		BufferSize:      cfg.Collector.BufferSize,
		RetryAttempts:   3,
		RetryDelay:      cfg.Collector.RetryDelay,
		ShutdownTimeout: 30 * time.Second,
	})
	if err := processor.Start(); err != nil {
		log.Fatal("failed to start event processor", zap.Error(err))
	}

	// Inventory syncs from the CMS backing store and falls back to the
	// local mirror when the network is down
	clock := platform.NewSystemClock()
	mirror, err := platform.NewFileStore(cfg.Upstream.MirrorFile)
	if err != nil {
		log.Fatal("failed to open inventory mirror", zap.Error(err))
	}
	inv := inventory.NewStore(inventory.Config{
		BaseURL:   cfg.Upstream.BaseURL,
		AuthToken: cfg.Upstream.AuthToken,
		Timeout:   cfg.Upstream.Timeout,
	}, mirror, clock, log)
	inv.Sync(context.Background())

	// Periodic re-sync keeps the in-memory list close to the backing store
	syncCtx, stopSync := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(cfg.Upstream.SyncEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				inv.Sync(syncCtx)
			case <-syncCtx.Done():
				return
			}
		}
	}()

	// Sticky dismissals survive restarts, session dismissals don't
	dismissFile, err := platform.NewFileStore(filepath.Join(filepath.Dir(cfg.Upstream.MirrorFile), "dismissals.json"))
	if err != nil {
		log.Fatal("failed to open dismissals store", zap.Error(err))
	}
	dismissals := rotation.NewDismissalStore(platform.NewMemoryStore(), dismissFile, clock, log)

	assigner := abtest.New(platform.NewMemoryStore(), platform.NewMemoryStore(), abtest.DefaultExperiments, log)

	// Consent decisions survive restarts: a visitor who rejected advertising
	// stays rejected
	consentFile, err := platform.NewFileStore(filepath.Join(filepath.Dir(cfg.Upstream.MirrorFile), "consents.json"))
	if err != nil {
		log.Fatal("failed to open consents store", zap.Error(err))
	}
	consents := consent.NewRegistry(consentFile, clock, log)

	delivery := service.NewDeliveryService(inv, assigner, dismissals, consents, clock,
		cfg.Delivery.RotationInterval, cfg.Delivery.SessionTTL, log)
	defer delivery.Stop()

	// Optional forwarding of accepted events to an external analytics endpoint
	var forwarder *telemetry.Batcher
	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint != "" {
		forwarder = telemetry.New(clock, platform.NewHTTPBeacon(&http.Client{Timeout: 10 * time.Second}), log)
		forwarder.Init(telemetry.Config{
			BatchSize:     cfg.Telemetry.BatchSize,
			FlushInterval: cfg.Telemetry.FlushInterval,
			Endpoint:      cfg.Telemetry.Endpoint,
			Enabled:       true,
			Debug:         cfg.Telemetry.Debug,
		}, telemetry.PageContext{})
		log.Info("telemetry forwarding enabled", zap.String("endpoint", cfg.Telemetry.Endpoint))
	}

	// Initialize JWT service for admin authentication
	jwtService := auth.NewJWTService(&auth.JWTConfig{
		SecretKey:     []byte(cfg.Admin.JWTSecret),
		TokenDuration: cfg.Admin.TokenDuration,
		Issuer:        "FTJ-Ads-Backend",
	})
	creds := auth.AdminCredentials{
		Email:        cfg.Admin.Email,
		PasswordHash: cfg.Admin.PasswordHash,
	}

	// Create HTTP server
	apiServer := httpHandler.NewServer(
		db,
		storage,
		inv,
		delivery,
		consents,
		processor,
		forwarder,
		jwtService,
		creds,
		cfg.HTTPServer.AllowedOrigins,
		log,
	)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPServer.Port),
		Handler:      apiServer.SetupRoutes(),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	log.Info("starting HTTP server", zap.String("address", httpServer.Addr))

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down FTJ ads service...")

	stopSync()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown HTTP server", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	// Drain the collection queue before closing the database
	if err := processor.Stop(); err != nil {
		log.Error("failed to stop event processor", zap.Error(err))
	}

	// Last-chance flush of forwarded telemetry
	if forwarder != nil {
		forwarder.Shutdown()
	}
}
