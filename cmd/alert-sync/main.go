package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/disha-ai/alert-sync/internal/api"
	"github.com/disha-ai/alert-sync/internal/bus"
	"github.com/disha-ai/alert-sync/internal/config"
	"github.com/disha-ai/alert-sync/internal/logging"
	"github.com/disha-ai/alert-sync/internal/mockapi"
	"github.com/disha-ai/alert-sync/internal/relay"
	"github.com/disha-ai/alert-sync/internal/storage"
	"github.com/disha-ai/alert-sync/internal/store"
	"github.com/disha-ai/alert-sync/internal/syncer"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	backend, err := storage.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	shared := storage.NewShared(backend)
	defer shared.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var transport relay.Transport
	switch cfg.Relay.Transport {
	case "redis":
		transport, err = relay.NewRedisTransport(cfg.Relay.RedisAddr, cfg.Relay.RedisChannel)
		if err != nil {
			logging.Fatalf("Failed to connect relay transport: %v", err)
		}
	default:
		transport = relay.NewStorageTransport(shared.Handle(), cfg.Relay.CleanupDelay)
	}

	eventBus := bus.New()
	client := mockapi.NewSimulated(cfg.API.MinLatency, cfg.API.MaxLatency)

	alertStore, err := store.New(store.Options{
		Handle:    shared.Handle(),
		Bus:       eventBus,
		Transport: transport,
		Client:    client,
	})
	if err != nil {
		logging.Fatalf("Failed to initialize alert store: %v", err)
	}

	var refresher *syncer.Syncer
	if cfg.Sync.Enabled {
		refresher = syncer.New(alertStore, cfg.Sync.Interval, cfg.Sync.Workers, cfg.Sync.BufferSize)
		refresher.Start(ctx)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	router.Use(api.RateLimitMiddleware(cfg.API.RateLimit))

	handler := api.NewHandler(alertStore, eventBus)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	if refresher != nil {
		refresher.Stop()
	}
	alertStore.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
