package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bagcount-gateway/config"
	"bagcount-gateway/database"
	"bagcount-gateway/device"
	"bagcount-gateway/handlers"
	"bagcount-gateway/logging"
	"bagcount-gateway/notifier"
	"bagcount-gateway/redis"
	"bagcount-gateway/services"

	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()
	logger := logging.NewLogger(cfg.LogLevel)

	// Initialize database
	db, err := database.NewDatabase(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis
	redisClient, err := redis.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer redisClient.Close()
	logger.Info("Redis connected successfully")

	// A cached snapshot survives a gateway restart; log it so an operator can
	// tell whether a run was in progress when the process died.
	if snapshot, err := redisClient.GetCountingStatus(); err == nil {
		logger.Info("Cached counting snapshot found",
			"state", snapshot.State,
			"batch", snapshot.BatchName,
			"totalCounted", snapshot.TotalCounted,
			"lastUpdate", snapshot.LastUpdate)
	}

	// Initialize event publisher
	events, err := notifier.NewPublisher(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize MQTT publisher: %v", err)
	}
	defer events.Disconnect()

	// Initialize device client and scheduler
	deviceClient := device.NewClient(cfg.DeviceBaseURL, cfg.DeviceTimeout, logger)
	scheduler := device.NewScheduler(logger)

	// Load application state and initialize services
	store := services.NewStore(db, logger)
	state := store.LoadState()

	batchService := services.NewBatchService(state, store, cfg.PageSize, logger)
	productService := services.NewProductService(state, store, deviceClient, logger)
	settingsService := services.NewSettingsService(state, store, deviceClient, logger)
	historyService := services.NewHistoryService(db, logger)
	countingService := services.NewCountingService(
		state, store, redisClient, deviceClient, scheduler, events,
		cfg.StatusInterval, cfg.RemoteInterval, cfg.RefreshInterval,
		logger,
	)

	// Start the always-on device polls
	countingService.StartBackground()

	// Setup HTTP server
	apiHandler := handlers.NewAPIHandler(
		batchService, countingService, productService,
		settingsService, historyService, deviceClient,
	)
	e := echo.New()
	e.HideBanner = true
	handlers.RegisterRoutes(e, apiHandler, logger)

	// Start server in goroutine
	go func() {
		logger.Info("Starting HTTP server", "addr", cfg.HTTPAddr)
		if err := e.Start(cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	scheduler.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
