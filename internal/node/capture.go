package node

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"

	"github.com/chandlerburket/security-camera/internal/config"
	"github.com/chandlerburket/security-camera/internal/framebuffer"
	"github.com/chandlerburket/security-camera/internal/logging"
	"github.com/chandlerburket/security-camera/internal/motion"
	"github.com/chandlerburket/security-camera/internal/relay"
)

const maxConsecutiveReadErrors = 10

// Capture owns the device read loop: grab a frame, run motion detection,
// JPEG-encode, publish to the local buffer and relay to the aggregator. It is
// the sole writer of the frame buffer and the sole caller of the detector's
// Process, so neither needs external locking.
type Capture struct {
	cfg      *config.Node
	frames   *framebuffer.Buffer
	detector *motion.Detector
	client   *relay.Client
	logger   zerolog.Logger

	// Rising-edge tracker for motion image uploads. Only touched from the
	// capture loop.
	wasDetected bool
}

// NewCapture wires the loop to its collaborators.
func NewCapture(cfg *config.Node, frames *framebuffer.Buffer, detector *motion.Detector, client *relay.Client) *Capture {
	return &Capture{
		cfg:      cfg,
		frames:   frames,
		detector: detector,
		client:   client,
		logger:   logging.WithCamera(logging.NewServiceLogger("camnode", "capture"), cfg.CameraID),
	}
}

// Run keeps the capture device open until the context ends, reopening after
// failures with a fixed delay.
func (c *Capture) Run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().
				Interface("panic", r).
				Msg("Capture loop panic recovered")
		}
	}()

	for {
		err := c.captureOnce(ctx)
		if ctx.Err() != nil {
			c.logger.Info().Msg("Capture loop stopped")
			return
		}

		c.logger.Error().
			Err(err).
			Str("source", c.cfg.CaptureSource).
			Dur("retry_in", c.cfg.ReconnectInterval).
			Msg("Capture failed, reopening device")

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.cfg.ReconnectInterval):
		}
	}
}

// captureOnce opens the device and reads frames until the context ends or
// the device fails repeatedly. Device index strings ("0"), file paths and
// RTSP URLs are all accepted.
func (c *Capture) captureOnce(ctx context.Context) error {
	cap, err := gocv.OpenVideoCapture(c.cfg.CaptureSource)
	if err != nil {
		return fmt.Errorf("open capture source %s: %w", c.cfg.CaptureSource, err)
	}
	defer cap.Close()

	// Minimal buffering keeps the loop on the freshest frame.
	cap.Set(gocv.VideoCaptureBufferSize, 1)
	cap.Set(gocv.VideoCaptureFrameWidth, float64(c.cfg.CaptureWidth))
	cap.Set(gocv.VideoCaptureFrameHeight, float64(c.cfg.CaptureHeight))
	cap.Set(gocv.VideoCaptureFPS, float64(c.cfg.CaptureFPS))

	if !cap.IsOpened() {
		return fmt.Errorf("capture source %s is not opened", c.cfg.CaptureSource)
	}

	c.logger.Info().
		Str("source", c.cfg.CaptureSource).
		Float64("actual_fps", cap.Get(gocv.VideoCaptureFPS)).
		Float64("actual_width", cap.Get(gocv.VideoCaptureFrameWidth)).
		Float64("actual_height", cap.Get(gocv.VideoCaptureFrameHeight)).
		Msg("Capture device opened")

	img := gocv.NewMat()
	defer img.Close()
	gray := gocv.NewMat()
	defer gray.Close()

	// A reopened device needs a fresh comparison baseline or the first diff
	// spans the outage and fires a bogus motion event.
	c.detector.Reset()

	fps := c.cfg.CaptureFPS
	if fps <= 0 {
		fps = 15
	}
	interval := time.Second / time.Duration(fps)
	consecutiveErrors := 0

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if ok := cap.Read(&img); !ok || img.Empty() {
			consecutiveErrors++
			c.logger.Warn().
				Int("consecutive_errors", consecutiveErrors).
				Msg("Failed to read frame from capture device")

			if consecutiveErrors >= maxConsecutiveReadErrors {
				return fmt.Errorf("too many consecutive read errors (%d)", consecutiveErrors)
			}
			time.Sleep(100 * time.Millisecond)
			continue
		}
		consecutiveErrors = 0

		c.processFrame(ctx, img, &gray)

		time.Sleep(interval)
	}
}

// processFrame handles one successfully read frame. Failures are contained
// here; a bad frame or a dead aggregator never stops the loop.
func (c *Capture) processFrame(ctx context.Context, img gocv.Mat, gray *gocv.Mat) {
	gocv.CvtColor(img, gray, gocv.ColorBGRToGray)
	state, err := c.detector.Process(*gray)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Motion detection failed for frame")
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, img, []int{gocv.IMWriteJpegQuality, c.cfg.JPEGQuality})
	if err != nil {
		c.logger.Error().Err(err).Msg("JPEG encode failed")
		return
	}
	// The buffer hands out immutable slices, so the frame is copied out of
	// the OpenCV-owned memory before release.
	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())
	buf.Close()

	if err := c.frames.Publish(framebuffer.Frame{Data: data, Timestamp: time.Now()}); err != nil {
		// Buffer closed, the node is shutting down.
		return
	}

	rising := state.Detected && !c.wasDetected
	c.wasDetected = state.Detected
	if rising {
		c.logger.Info().Msg("Motion detected")
		go c.uploadMotionImage(ctx, data)
	}

	if err := c.client.SendFrame(ctx, data); err != nil {
		c.logger.Debug().Err(err).Msg("Frame upload failed")
	}
}

// uploadMotionImage ships the triggering frame off the capture loop's path.
// The aggregator throttles saves itself, so a skipped reply is routine.
func (c *Capture) uploadMotionImage(ctx context.Context, data []byte) {
	stored, err := c.client.SendMotionImage(ctx, data)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Motion image upload failed")
		return
	}
	if !stored {
		c.logger.Debug().Msg("Motion image skipped by server throttle")
	}
}
