package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/chandlerburket/security-camera/internal/config"
	"github.com/chandlerburket/security-camera/internal/logging"
	"github.com/chandlerburket/security-camera/internal/node"
)

func main() {
	// Load configuration
	cfg := config.LoadNode()

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
		Str("camera_id", cfg.CameraID).
		Str("version", cfg.Version).
		Str("environment", cfg.Environment).
		Str("server_url", cfg.ServerURL).
		Str("capture_source", cfg.CaptureSource).
		Int("port", cfg.Port).
		Msg("Starting camera node")

	svc := node.NewService(cfg)
	svc.Start()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutdown signal received")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	svc.Shutdown(ctx)
}
