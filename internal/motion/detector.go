package motion

import (
	"errors"
	"image"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"
)

// ErrEmptyFrame is returned when Process receives a frame that failed to
// decode. The detector state is left unchanged.
var ErrEmptyFrame = errors.New("motion: empty frame")

// State is the detector output consumed by the recording trigger and the
// heartbeat reporter.
type State struct {
	Detected     bool
	LastMotionAt time.Time
}

// Config holds the detection tuning knobs. Too low an area threshold floods
// downstream notifications, too high misses real events.
type Config struct {
	// BlurKernel is the side of the Gaussian kernel applied before
	// differencing. Must be odd.
	BlurKernel int

	// DiffThreshold is the per-pixel intensity delta (0-255) above which a
	// pixel counts as changed.
	DiffThreshold float32

	// AreaThreshold is the minimum contour area in pixels that qualifies
	// as motion.
	AreaThreshold float64

	// Debounce keeps the reported state true for this long after the last
	// qualifying frame, so a single physical event does not flicker.
	Debounce time.Duration
}

// Detector classifies consecutive grayscale frames as motion/no-motion by
// frame differencing. Process must be called from a single goroutine (the
// capture loop); State is safe for concurrent readers.
type Detector struct {
	cfg Config

	// Owned by the Process caller, no lock needed.
	prev    gocv.Mat
	work    gocv.Mat
	diff    gocv.Mat
	kernel  gocv.Mat
	hasPrev bool

	mu    sync.RWMutex
	state State
}

// NewDetector allocates the detector and its scratch buffers. Call Close
// when done to release them.
func NewDetector(cfg Config) *Detector {
	return &Detector{
		cfg:    cfg,
		prev:   gocv.NewMat(),
		work:   gocv.NewMat(),
		diff:   gocv.NewMat(),
		kernel: gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3)),
	}
}

// Process consumes one grayscale frame and returns the updated motion state.
// The first frame only seeds the comparison baseline and reports no motion.
// The baseline is replaced on every call, motion or not, so the detector
// tracks slow drift instead of comparing against a stale scene.
func (d *Detector) Process(gray gocv.Mat) (State, error) {
	if gray.Empty() {
		log.Warn().Msg("Motion detector received an empty frame")
		return d.State(), ErrEmptyFrame
	}

	gocv.GaussianBlur(gray, &d.work, image.Pt(d.cfg.BlurKernel, d.cfg.BlurKernel), 0, 0, gocv.BorderDefault)

	if !d.hasPrev {
		d.work.CopyTo(&d.prev)
		d.hasPrev = true
		return d.State(), nil
	}

	gocv.AbsDiff(d.prev, d.work, &d.diff)
	gocv.Threshold(d.diff, &d.diff, d.cfg.DiffThreshold, 255, gocv.ThresholdBinary)
	gocv.Dilate(d.diff, &d.diff, d.kernel)

	raw := false
	contours := gocv.FindContours(d.diff, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	for i := 0; i < contours.Size(); i++ {
		if gocv.ContourArea(contours.At(i)) > d.cfg.AreaThreshold {
			raw = true
			break
		}
	}
	contours.Close()

	d.work.CopyTo(&d.prev)

	now := time.Now()
	d.mu.Lock()
	if raw {
		d.state.LastMotionAt = now
	}
	d.state.Detected = raw || now.Sub(d.state.LastMotionAt) < d.cfg.Debounce
	snapshot := d.state
	d.mu.Unlock()

	return snapshot, nil
}

// State returns the current motion state. Safe to call from any goroutine.
func (d *Detector) State() State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

// Reset drops the comparison baseline so the next frame seeds a fresh one.
func (d *Detector) Reset() {
	d.hasPrev = false
	d.mu.Lock()
	d.state = State{}
	d.mu.Unlock()
}

// Close releases the OpenCV buffers. The detector must not be used after.
func (d *Detector) Close() {
	d.prev.Close()
	d.work.Close()
	d.diff.Close()
	d.kernel.Close()
}
