package node

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/chandlerburket/security-camera/internal/config"
	"github.com/chandlerburket/security-camera/internal/framebuffer"
	"github.com/chandlerburket/security-camera/internal/motion"
	"github.com/chandlerburket/security-camera/internal/recording"
	"github.com/chandlerburket/security-camera/internal/relay"
	"github.com/chandlerburket/security-camera/internal/telemetry"
)

// Service assembles the camera node: capture loop, motion detector, recording
// session, aggregator relay and the local preview server.
type Service struct {
	cfg *config.Node

	frames    *framebuffer.Buffer
	detector  *motion.Detector
	session   *recording.Session
	client    *relay.Client
	heartbeat *relay.Heartbeat
	collector *telemetry.Collector
	capture   *Capture
	server    *localServer

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewService wires the node from its configuration. Nothing touches the
// capture device or the network until Start.
func NewService(cfg *config.Node) *Service {
	frames := framebuffer.New()

	detector := motion.NewDetector(motion.Config{
		BlurKernel:    cfg.MotionBlurKernel,
		DiffThreshold: cfg.MotionDiffThreshold,
		AreaThreshold: cfg.MotionAreaThreshold,
		Debounce:      cfg.MotionDebounce,
	})

	client := relay.NewClient(relay.Config{
		ServerURL:     cfg.ServerURL,
		CameraID:      cfg.CameraID,
		FrameTimeout:  cfg.FrameTimeout,
		StatusTimeout: cfg.StatusTimeout,
		ImageTimeout:  cfg.ImageTimeout,
		VideoTimeout:  cfg.VideoTimeout,
	})

	// Sampled frames play back at real-time pacing: one frame per sample
	// interval of recording.
	frameRate := 0.0
	if cfg.RecordingSampleInterval > 0 {
		frameRate = 1.0 / cfg.RecordingSampleInterval.Seconds()
	}
	encoder := recording.NewFFmpegEncoder(cfg.FFmpegPath, frameRate, cfg.EncodeTimeout)
	session := recording.NewSession(recording.Config{
		CameraID:       cfg.CameraID,
		MaxDuration:    cfg.RecordingMaxDuration,
		SampleInterval: cfg.RecordingSampleInterval,
	}, frames.Latest, encoder, client)

	collector := telemetry.NewCollector(telemetry.Config{
		ThermalZonePath: cfg.ThermalZonePath,
		UptimePath:      cfg.UptimePath,
		WirelessPath:    cfg.WirelessPath,
	})

	svc := &Service{
		cfg:       cfg,
		frames:    frames,
		detector:  detector,
		session:   session,
		client:    client,
		heartbeat: relay.NewHeartbeat(client, cfg.StatusInterval, collector, detector, session),
		collector: collector,
		capture:   NewCapture(cfg, frames, detector, client),
	}
	svc.server = newLocalServer(cfg, svc)

	return svc
}

// Start launches the capture loop, the heartbeat and the preview server.
func (s *Service) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.capture.Run(ctx)
	}()
	go func() {
		defer s.wg.Done()
		s.heartbeat.Run(ctx)
	}()

	s.server.Start()

	log.Info().
		Str("camera_id", s.cfg.CameraID).
		Str("server_url", s.cfg.ServerURL).
		Int("port", s.cfg.Port).
		Msg("Camera node started")
}

// Shutdown flushes any active recording, stops the loops and closes the
// preview server.
func (s *Service) Shutdown(ctx context.Context) {
	log.Info().Str("camera_id", s.cfg.CameraID).Msg("Stopping camera node")

	// Flush first, while the buffer still holds the last frame.
	if err := s.session.Stop(); err != nil && !errors.Is(err, recording.ErrNotRecording) {
		log.Warn().Err(err).Str("camera_id", s.cfg.CameraID).Msg("Final recording flush failed")
	}

	if s.cancel != nil {
		s.cancel()
	}
	// Unblocks preview streams and the session sampler.
	s.frames.Close()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		// The OpenCV buffers are only released once the capture loop has
		// confirmed exit; Process on a closed Mat would crash.
		s.detector.Close()
	case <-ctx.Done():
		log.Warn().Str("camera_id", s.cfg.CameraID).Msg("Capture loops did not stop in time")
	}

	if err := s.server.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("Preview server shutdown failed")
	}

	log.Info().Str("camera_id", s.cfg.CameraID).Msg("Camera node stopped")
}
