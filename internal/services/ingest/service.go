package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/chandlerburket/security-camera/internal/config"
	"github.com/chandlerburket/security-camera/internal/messaging"
	"github.com/chandlerburket/security-camera/internal/models"
	"github.com/chandlerburket/security-camera/internal/notify"
	"github.com/chandlerburket/security-camera/internal/registry"
	"github.com/chandlerburket/security-camera/internal/storage"
)

// Service processes everything camera nodes upload: live frames, motion
// captures, finished recordings and heartbeats. It owns the per-camera save
// throttle and mirrors noteworthy transitions onto NATS.
type Service struct {
	cfg      *config.Server
	registry *registry.Registry
	store    storage.ObjectStore
	notifier *notify.Notifier
	events   *messaging.Service

	saveThrottle *cache.Cache
}

// NewService wires the upload pipeline. notifier may be nil when push is
// disabled; events may be nil when NATS is disabled.
func NewService(cfg *config.Server, reg *registry.Registry, store storage.ObjectStore, notifier *notify.Notifier, events *messaging.Service) *Service {
	return &Service{
		cfg:          cfg,
		registry:     reg,
		store:        store,
		notifier:     notifier,
		events:       events,
		saveThrottle: cache.New(cfg.SaveInterval, cfg.SaveInterval),
	}
}

// HandleFrame publishes a live frame into the camera's buffer.
func (s *Service) HandleFrame(cameraID string, data []byte) error {
	entry := s.registry.GetOrCreate(cameraID)
	return entry.PublishFrame(data)
}

// HandleMotionImage persists a motion capture unless the camera saved one
// within the save interval. Returns saved=false for a throttled upload. The
// push notification runs in the background so a slow push API never stalls
// the node's upload.
func (s *Service) HandleMotionImage(ctx context.Context, cameraID string, data []byte) (storage.Saved, bool, error) {
	if err := s.saveThrottle.Add(cameraID, time.Now(), cache.DefaultExpiration); err != nil {
		log.Debug().
			Str("camera_id", cameraID).
			Msg("Motion capture throttled")
		return storage.Saved{}, false, nil
	}

	saved, err := s.store.SaveMotionImage(ctx, cameraID, data, time.Now())
	if err != nil {
		return storage.Saved{}, false, fmt.Errorf("save motion capture: %w", err)
	}

	log.Info().
		Str("camera_id", cameraID).
		Str("filename", saved.Filename).
		Int64("size", saved.Size).
		Msg("Motion capture stored")

	s.events.PublishCapture(models.MotionCaptureEvent{
		CameraID:  cameraID,
		Filename:  saved.Filename,
		Size:      saved.Size,
		Location:  saved.Location,
		Timestamp: time.Now(),
	})

	if s.notifier != nil {
		go s.pushAlert(cameraID, data)
	}

	return saved, true, nil
}

func (s *Service) pushAlert(cameraID string, image []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("camera_id", cameraID).
				Msg("Panic in push alert")
		}
	}()

	if _, err := s.notifier.MotionAlert(context.Background(), cameraID, image); err != nil {
		log.Warn().
			Err(err).
			Str("camera_id", cameraID).
			Msg("Push alert failed")
	}
}

// HandleVideo persists a finished recording.
func (s *Service) HandleVideo(ctx context.Context, cameraID string, data []byte) (storage.Saved, error) {
	saved, err := s.store.SaveRecording(ctx, cameraID, data, time.Now())
	if err != nil {
		return storage.Saved{}, fmt.Errorf("save recording: %w", err)
	}

	log.Info().
		Str("camera_id", cameraID).
		Str("filename", saved.Filename).
		Int64("size", saved.Size).
		Msg("Recording stored")

	s.events.PublishRecording(models.RecordingEvent{
		CameraID:  cameraID,
		Filename:  saved.Filename,
		Size:      saved.Size,
		Location:  saved.Location,
		Timestamp: time.Now(),
	})

	return saved, nil
}

// HandleStatus mirrors a heartbeat into the registry and drains at most one
// pending command for the reply.
func (s *Service) HandleStatus(report models.HeartbeatReport) (models.Command, bool) {
	entry := s.registry.GetOrCreate(report.CameraID)
	prev := entry.UpdateReport(report)

	if report.MotionDetected && !prev.MotionDetected {
		s.events.PublishMotion(models.MotionEvent{
			CameraID:       report.CameraID,
			MotionDetected: true,
			LastMotionTime: report.LastMotionTime,
			Timestamp:      time.Now(),
		})
	}

	return entry.DrainCommand()
}

// HandleDoor stores a door event, shared by the webhook and the MQTT
// listener.
func (s *Service) HandleDoor(event models.DoorEvent) {
	s.registry.UpdateDoor(event)

	s.events.PublishDoor(models.DoorSensorEvent{
		DoorState: event.DoorState,
		Device:    event.Device,
		Timestamp: time.Now(),
	})
}
