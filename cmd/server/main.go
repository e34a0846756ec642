package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"travelmatch/internal/app"
	"travelmatch/internal/config"
	"travelmatch/internal/handler"
	internalRedis "travelmatch/internal/redis"
	"travelmatch/internal/repository/postgres"
	"travelmatch/internal/service"
	"travelmatch/internal/ws"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.WithError(err).Warn("failed to initialize New Relic")
		} else {
			log.WithField("app", cfg.NewRelic.AppName).Info("New Relic enabled")
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()
	log.Info("connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info("connected to Redis")

	// Wire dependencies.
	server, hub, dispatcher := wireServer(db, redisClient, nrApp, cfg, log)

	go hub.Run()
	dispatcher.Start()

	// Start server in goroutine.
	go func() {
		log.WithField("port", cfg.Server.Port).Info("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	// Drain queued side effects, then drop the websocket clients.
	dispatcher.Stop()
	hub.Stop()

	log.Info("server exited")
}

// wireServer wires all dependencies and returns the HTTP server plus the
// background components the caller must start and stop.
func wireServer(
	db *sql.DB,
	redisClient *redis.Client,
	nrApp *newrelic.Application,
	cfg *config.Config,
	log *logrus.Logger,
) (*http.Server, *ws.Hub, *service.Dispatcher) {
	// Initialize stores and repositories.
	cacheStore := internalRedis.NewCacheStore(redisClient)
	hostRepo := postgres.NewHostRepository(db)
	tripRepo := postgres.NewTripRepository(db)
	matchRepo := postgres.NewMatchRepository(db)
	auditRepo := postgres.NewAuditLogRepository(db)
	analyticsRepo := postgres.NewAnalyticsRepository(db)
	txManager := postgres.NewTxManager(db)

	// Initialize side-effect pipeline.
	hub := ws.NewHub(log)
	notifier := service.NewWSNotifier(hub, log)
	dispatcher := service.NewDispatcher(notifier, auditRepo, analyticsRepo, log, 256)

	// Initialize services.
	secret := []byte(cfg.Auth.JWTSecret)
	authService := service.NewAuthService(hostRepo, secret, cfg.Auth.TokenTTL, cfg.Auth.AdminEmails)
	tripService := service.NewTripService(hostRepo, tripRepo, matchRepo, cacheStore, dispatcher, log)
	matchService := service.NewMatchService(txManager, cacheStore, dispatcher, log)
	adminService := service.NewAdminService(txManager, hostRepo, cacheStore, dispatcher, log)

	// Initialize handlers.
	hostHandler := handler.NewHostHandler(authService)
	tripHandler := handler.NewTripHandler(tripService)
	matchHandler := handler.NewMatchHandler(matchService)
	adminHandler := handler.NewAdminHandler(adminService)
	wsHandler := handler.NewWSHandler(hub)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		HostHandler:  hostHandler,
		TripHandler:  tripHandler,
		MatchHandler: matchHandler,
		AdminHandler: adminHandler,
		WSHandler:    wsHandler,
		JWTSecret:    secret,
		RedisClient:  redisClient,
		NewRelicApp:  nrApp,
	})

	// Create HTTP server.
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return server, hub, dispatcher
}
