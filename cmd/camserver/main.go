package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/chandlerburket/security-camera/internal/api"
	"github.com/chandlerburket/security-camera/internal/config"
	"github.com/chandlerburket/security-camera/internal/logging"
	"github.com/chandlerburket/security-camera/internal/services"
)

// @title Security Camera API
// @version 1.0.0
// @description Aggregator API for camera nodes, live MJPEG streaming and recording control
// @host localhost:5000
// @BasePath /
func main() {
	// Load configuration
	cfg := config.LoadServer()

	// Setup structured logging
	logdyURL := logging.Setup(logging.Settings{
		Level:        cfg.LogLevel,
		LogdyEnabled: cfg.LogdyEnabled,
		LogdyHost:    cfg.LogdyHost,
		LogdyPort:    cfg.LogdyPort,
	})
	if logdyURL != "" {
		log.Info().Str("url", logdyURL).Msg("Logdy web log viewer enabled")
	}

	log.Info().
		Str("version", cfg.Version).
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Bool("storage_enabled", cfg.StorageEnabled).
		Bool("push_enabled", cfg.PushEnabled).
		Bool("nats_enabled", cfg.NatsEnabled).
		Bool("mqtt_enabled", cfg.MQTTEnabled).
		Msg("Starting camera aggregator")

	// Wire services (object store, notifier, event bus, door sensor)
	container, err := services.NewServiceContainer(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}

	// Create and start server
	server := api.NewServer(cfg, container)
	if err := server.Setup(); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up server")
	}

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutdown signal received")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := container.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Service shutdown incomplete")
	}

	log.Info().Msg("Aggregator shutdown complete")
}
