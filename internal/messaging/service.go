package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/chandlerburket/security-camera/internal/config"
	"github.com/chandlerburket/security-camera/internal/models"
)

// Service mirrors aggregator events onto NATS so other systems can react
// without polling the REST API. A nil *Service is a valid disabled mirror;
// every publisher is a no-op on it.
type Service struct {
	conn *nats.Conn
	cfg  *config.Server
}

func NewService(cfg *config.Server) (*Service, error) {
	opts := []nats.Option{
		nats.Name("camserver"),
		nats.Timeout(cfg.NatsConnectTimeout),
		nats.ReconnectWait(cfg.NatsReconnectWait),
		nats.MaxReconnects(cfg.NatsMaxReconnects),
		nats.DrainTimeout(cfg.NatsDrainTimeout),
	}

	conn, err := nats.Connect(cfg.NatsURL, opts...)
	if err != nil {
		return nil, err
	}

	log.Info().Str("url", cfg.NatsURL).Msg("NATS connection established")

	return &Service{
		conn: conn,
		cfg:  cfg,
	}, nil
}

// MotionSubject is the per-camera subject for motion state transitions.
func MotionSubject(cameraID string) string {
	return fmt.Sprintf("camera.motion.%s", cameraID)
}

// CaptureSubject is the per-camera subject for stored motion stills.
func CaptureSubject(cameraID string) string {
	return fmt.Sprintf("camera.capture.%s", cameraID)
}

// RecordingSubject is the per-camera subject for stored recordings.
func RecordingSubject(cameraID string) string {
	return fmt.Sprintf("camera.recording.%s", cameraID)
}

// DoorSubject is the per-device subject for door sensor events.
func DoorSubject(device string) string {
	if device == "" {
		device = "unknown"
	}
	return fmt.Sprintf("sensor.door.%s", device)
}

// PublishMotion mirrors a motion state transition.
func (s *Service) PublishMotion(event models.MotionEvent) {
	s.publish(MotionSubject(event.CameraID), event)
}

// PublishCapture mirrors a stored motion still.
func (s *Service) PublishCapture(event models.MotionCaptureEvent) {
	s.publish(CaptureSubject(event.CameraID), event)
}

// PublishRecording mirrors a stored recording.
func (s *Service) PublishRecording(event models.RecordingEvent) {
	s.publish(RecordingSubject(event.CameraID), event)
}

// PublishDoor mirrors a door sensor event.
func (s *Service) PublishDoor(event models.DoorSensorEvent) {
	s.publish(DoorSubject(event.Device), event)
}

// publish is fire-and-forget: event mirroring never fails an upload, so
// errors are logged rather than returned.
func (s *Service) publish(subject string, data interface{}) {
	if s == nil || s.conn == nil {
		return
	}

	payload, err := json.Marshal(data)
	if err != nil {
		log.Warn().Err(err).Str("subject", subject).Msg("Failed to marshal event")
		return
	}

	if err := s.conn.Publish(subject, payload); err != nil {
		log.Warn().Err(err).Str("subject", subject).Msg("Failed to publish event")
	}
}

func (s *Service) IsConnected() bool {
	return s != nil && s.conn != nil && s.conn.IsConnected()
}

func (s *Service) Shutdown(ctx context.Context) error {
	if s == nil || s.conn == nil {
		return nil
	}
	// Try graceful drain, fallback to immediate close
	if err := s.conn.Drain(); err != nil {
		log.Warn().Err(err).Msg("Failed to drain NATS connection gracefully, closing immediately")
		s.conn.Close()
	}
	return nil
}
