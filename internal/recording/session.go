package recording

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/chandlerburket/security-camera/internal/framebuffer"
)

var (
	// ErrAlreadyRecording is returned by Start when a session is not idle.
	ErrAlreadyRecording = errors.New("recording: already recording")

	// ErrNotRecording is returned by Stop when no session is active.
	ErrNotRecording = errors.New("recording: no recording in progress")

	// ErrNoFrames is returned when a session finalizes without having
	// sampled a single frame.
	ErrNoFrames = errors.New("recording: no frames captured")
)

// State represents the atomic phase of a recording session.
type State int32

const (
	StateIdle State = iota
	StateActive
	StateFinalizing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateFinalizing:
		return "finalizing"
	default:
		return "unknown"
	}
}

// FrameGrabber returns the most recent frame if one is available.
// (*framebuffer.Buffer).Latest satisfies it.
type FrameGrabber func() (framebuffer.Frame, bool)

// Encoder turns an ordered frame sequence into a single video blob.
type Encoder interface {
	Encode(ctx context.Context, frames [][]byte) ([]byte, error)
}

// Uploader ships a finalized video off the node. Implementations own their
// network timeouts.
type Uploader interface {
	UploadVideo(ctx context.Context, video []byte, startedAt time.Time) error
}

// Config holds the session bounds.
type Config struct {
	CameraID       string
	MaxDuration    time.Duration
	SampleInterval time.Duration
	JoinTimeout    time.Duration
}

// Session is a bounded-duration recording. It samples the latest frame on a
// fixed interval while active, then encodes and uploads the collected
// sequence on stop or when MaxDuration elapses. Start and Stop are safe to
// call from any goroutine; transitions are guarded by a single atomic
// check-and-set so no two starts can both succeed.
type Session struct {
	cfg      Config
	grab     FrameGrabber
	encoder  Encoder
	uploader Uploader

	state int32

	mu        sync.Mutex
	frames    [][]byte
	startedAt time.Time
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewSession creates an idle session. uploader may be nil, in which case the
// encoded video is dropped after logging (useful when uploads are disabled).
func NewSession(cfg Config, grab FrameGrabber, encoder Encoder, uploader Uploader) *Session {
	if cfg.JoinTimeout <= 0 {
		cfg.JoinTimeout = 5 * time.Second
	}
	return &Session{
		cfg:      cfg,
		grab:     grab,
		encoder:  encoder,
		uploader: uploader,
	}
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	return State(atomic.LoadInt32(&s.state))
}

// Recording reports whether a session is in progress (active or finalizing).
func (s *Session) Recording() bool {
	return s.State() != StateIdle
}

// Start transitions Idle -> Active and launches the sampling loop. Any
// non-idle state reports ErrAlreadyRecording and leaves the running session
// untouched.
func (s *Session) Start() error {
	if !atomic.CompareAndSwapInt32(&s.state, int32(StateIdle), int32(StateActive)) {
		return ErrAlreadyRecording
	}

	s.mu.Lock()
	s.frames = make([][]byte, 0, 64)
	s.startedAt = time.Now()
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	startedAt, stopCh, doneCh := s.startedAt, s.stopCh, s.doneCh
	s.mu.Unlock()

	go s.sample(startedAt, stopCh, doneCh)

	log.Info().
		Str("camera_id", s.cfg.CameraID).
		Dur("max_duration", s.cfg.MaxDuration).
		Dur("sample_interval", s.cfg.SampleInterval).
		Msg("Recording started")

	return nil
}

// Stop transitions Active -> Finalizing, joins the sampling loop with a
// bounded wait and finalizes the session. Returns ErrNotRecording when no
// session is active.
func (s *Session) Stop() error {
	if !atomic.CompareAndSwapInt32(&s.state, int32(StateActive), int32(StateFinalizing)) {
		return ErrNotRecording
	}

	s.mu.Lock()
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
	case <-time.After(s.cfg.JoinTimeout):
		log.Warn().
			Str("camera_id", s.cfg.CameraID).
			Msg("Recording sampler join timeout")
	}

	return s.finalize()
}

// sample runs while the session is active. Each tick it pulls the latest
// frame and appends it to the store; the capture loop is never blocked. When
// MaxDuration elapses the loop finalizes in place unless a concurrent Stop
// already claimed the transition.
func (s *Session) sample(startedAt time.Time, stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("camera_id", s.cfg.CameraID).
				Interface("panic", r).
				Msg("Recording sampler panic recovered")
		}
	}()

	ticker := time.NewTicker(s.cfg.SampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if time.Since(startedAt) > s.cfg.MaxDuration {
				if atomic.CompareAndSwapInt32(&s.state, int32(StateActive), int32(StateFinalizing)) {
					log.Info().
						Str("camera_id", s.cfg.CameraID).
						Dur("max_duration", s.cfg.MaxDuration).
						Msg("Recording reached max duration")
					if err := s.finalize(); err != nil {
						log.Error().
							Err(err).
							Str("camera_id", s.cfg.CameraID).
							Msg("Recording finalize failed")
					}
				}
				return
			}

			frame, ok := s.grab()
			if !ok {
				continue
			}
			s.mu.Lock()
			s.frames = append(s.frames, frame.Data)
			s.mu.Unlock()
		}
	}
}

// finalize encodes and uploads the sampled frames. The store is released and
// the session returns to Idle on every exit path. Callers must hold the
// Finalizing state.
func (s *Session) finalize() error {
	s.mu.Lock()
	frames := s.frames
	startedAt := s.startedAt
	s.frames = nil
	s.mu.Unlock()

	defer atomic.StoreInt32(&s.state, int32(StateIdle))

	if len(frames) == 0 {
		log.Warn().
			Str("camera_id", s.cfg.CameraID).
			Msg("Recording ended with no frames captured")
		return ErrNoFrames
	}

	video, err := s.encoder.Encode(context.Background(), frames)
	if err != nil {
		return fmt.Errorf("encode recording: %w", err)
	}

	log.Info().
		Str("camera_id", s.cfg.CameraID).
		Int("frames", len(frames)).
		Int("video_bytes", len(video)).
		Dur("duration", time.Since(startedAt)).
		Msg("Recording encoded")

	if s.uploader == nil {
		return nil
	}

	if err := s.uploader.UploadVideo(context.Background(), video, startedAt); err != nil {
		return fmt.Errorf("upload recording: %w", err)
	}

	return nil
}
