package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/chandlerburket/security-camera/internal/config"
	"github.com/chandlerburket/security-camera/internal/messaging"
	"github.com/chandlerburket/security-camera/internal/notify"
	"github.com/chandlerburket/security-camera/internal/registry"
	"github.com/chandlerburket/security-camera/internal/sensors"
	"github.com/chandlerburket/security-camera/internal/services/ingest"
	"github.com/chandlerburket/security-camera/internal/storage"
)

// ServiceContainer holds all aggregator services
type ServiceContainer struct {
	Config   *config.Server
	Registry *registry.Registry
	Store    storage.ObjectStore
	Notifier *notify.Notifier
	Events   *messaging.Service
	Ingest   *ingest.Service
	Door     *sensors.DoorListener
}

// NewServiceContainer creates a new service container
func NewServiceContainer(ctx context.Context, cfg *config.Server) (*ServiceContainer, error) {
	reg := registry.New()

	// Object storage: S3-compatible bucket when enabled, local disk otherwise
	var store storage.ObjectStore
	var err error
	if cfg.StorageEnabled {
		store, err = storage.NewMinioStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
	} else {
		store, err = storage.NewDiskStore(cfg.DataDir, cfg.MotionFolder, cfg.VideoFolder)
		if err != nil {
			return nil, err
		}
	}

	var notifier *notify.Notifier
	if cfg.PushEnabled {
		notifier = notify.NewNotifier(cfg)
	}

	// Event bus is optional; a nil service turns publishing into a no-op
	var events *messaging.Service
	if cfg.NatsEnabled {
		events, err = messaging.NewService(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("Event bus unavailable, continuing without it")
			events = nil
		}
	}

	ingestSvc := ingest.NewService(cfg, reg, store, notifier, events)

	var door *sensors.DoorListener
	if cfg.MQTTEnabled {
		door, err = sensors.NewDoorListener(cfg, ingestSvc.HandleDoor)
		if err != nil {
			log.Warn().Err(err).Msg("Door sensor listener unavailable, continuing without it")
			door = nil
		}
	}

	return &ServiceContainer{
		Config:   cfg,
		Registry: reg,
		Store:    store,
		Notifier: notifier,
		Events:   events,
		Ingest:   ingestSvc,
		Door:     door,
	}, nil
}

// Shutdown gracefully shuts down all services
func (sc *ServiceContainer) Shutdown(ctx context.Context) error {
	if sc.Door != nil {
		sc.Door.Close()
	}

	if err := sc.Events.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("Event bus shutdown failed")
	}

	if sc.Registry != nil {
		sc.Registry.Close()
	}

	return nil
}
