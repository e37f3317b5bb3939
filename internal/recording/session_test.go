package recording

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chandlerburket/security-camera/internal/framebuffer"
)

type fakeEncoder struct {
	mu     sync.Mutex
	calls  int
	frames [][]byte
	out    []byte
	err    error
}

func (f *fakeEncoder) Encode(ctx context.Context, frames [][]byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.frames = frames
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func (f *fakeEncoder) snapshot() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls, len(f.frames)
}

type fakeUploader struct {
	mu    sync.Mutex
	calls int
	video []byte
	err   error
}

func (f *fakeUploader) UploadVideo(ctx context.Context, video []byte, startedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.video = video
	return f.err
}

func (f *fakeUploader) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// countingGrabber returns a grabber that always has a frame and counts how
// many times it was pulled.
func countingGrabber(n *int64) FrameGrabber {
	return func() (framebuffer.Frame, bool) {
		i := atomic.AddInt64(n, 1)
		return framebuffer.Frame{Data: []byte{byte(i)}, Timestamp: time.Now()}, true
	}
}

func noFrameGrabber() (framebuffer.Frame, bool) {
	return framebuffer.Frame{}, false
}

// waitFor polls cond until it holds or the deadline expires.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal(msg)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

// TestDoubleStartReportsAlreadyRecording verifies the second of two starts
// fails without disturbing the running session or its frame store.
func TestDoubleStartReportsAlreadyRecording(t *testing.T) {
	var grabs int64
	enc := &fakeEncoder{out: []byte("video")}
	sess := NewSession(Config{
		CameraID:       "cam1",
		MaxDuration:    10 * time.Second,
		SampleInterval: 10 * time.Millisecond,
	}, countingGrabber(&grabs), enc, nil)

	if err := sess.Start(); err != nil {
		t.Fatalf("First Start failed: %v", err)
	}
	waitFor(t, func() bool { return atomic.LoadInt64(&grabs) >= 3 }, "Sampler never pulled frames")

	if err := sess.Start(); err != ErrAlreadyRecording {
		t.Errorf("Expected ErrAlreadyRecording, got %v", err)
	}
	if sess.State() != StateActive {
		t.Errorf("Expected state active after double start, got %s", sess.State())
	}

	// The store survives the rejected start and keeps accumulating.
	waitFor(t, func() bool { return atomic.LoadInt64(&grabs) >= 6 }, "Sampler stopped after double start")

	if err := sess.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	calls, frames := enc.snapshot()
	if calls != 1 {
		t.Errorf("Expected one encode, got %d", calls)
	}
	if frames < 6 {
		t.Errorf("Expected at least 6 frames across both halves, got %d", frames)
	}
}

// TestAutoFinalizeAfterMaxDuration verifies the session self-cancels within
// one sample interval past MaxDuration and finalizes with the frames sampled
// so far.
func TestAutoFinalizeAfterMaxDuration(t *testing.T) {
	var grabs int64
	enc := &fakeEncoder{out: []byte("video")}
	up := &fakeUploader{}
	sess := NewSession(Config{
		CameraID:       "cam1",
		MaxDuration:    500 * time.Millisecond,
		SampleInterval: 200 * time.Millisecond,
	}, countingGrabber(&grabs), enc, up)

	start := time.Now()
	if err := sess.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	waitFor(t, func() bool { return sess.State() == StateIdle }, "Session never auto-finalized")
	elapsed := time.Since(start)

	if elapsed < 500*time.Millisecond {
		t.Errorf("Auto-finalize fired before max duration: %v", elapsed)
	}
	if elapsed > 900*time.Millisecond {
		t.Errorf("Auto-finalize took more than one interval past max duration: %v", elapsed)
	}

	calls, frames := enc.snapshot()
	if calls != 1 {
		t.Fatalf("Expected one encode, got %d", calls)
	}
	if frames < 2 || frames > 3 {
		t.Errorf("Expected 2-3 sampled frames, got %d", frames)
	}
	if up.count() != 1 {
		t.Errorf("Expected one upload, got %d", up.count())
	}
}

// TestStopWhenIdleReportsNotRecording verifies Stop on an idle session.
func TestStopWhenIdleReportsNotRecording(t *testing.T) {
	sess := NewSession(Config{
		MaxDuration:    time.Second,
		SampleInterval: 10 * time.Millisecond,
	}, noFrameGrabber, &fakeEncoder{}, nil)

	if err := sess.Stop(); err != ErrNotRecording {
		t.Errorf("Expected ErrNotRecording, got %v", err)
	}
}

// TestFinalizeWithNoFramesFailsCleanly verifies a session whose source never
// produced a frame fails with ErrNoFrames, skips the encoder and is reusable.
func TestFinalizeWithNoFramesFailsCleanly(t *testing.T) {
	enc := &fakeEncoder{}
	up := &fakeUploader{}
	sess := NewSession(Config{
		CameraID:       "cam1",
		MaxDuration:    10 * time.Second,
		SampleInterval: 10 * time.Millisecond,
	}, noFrameGrabber, enc, up)

	if err := sess.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	if err := sess.Stop(); err != ErrNoFrames {
		t.Errorf("Expected ErrNoFrames, got %v", err)
	}
	if sess.State() != StateIdle {
		t.Errorf("Expected state idle after failed finalize, got %s", sess.State())
	}
	if calls, _ := enc.snapshot(); calls != 0 {
		t.Errorf("Encoder should not run with no frames, got %d calls", calls)
	}
	if up.count() != 0 {
		t.Errorf("Uploader should not run with no frames, got %d calls", up.count())
	}

	// Store was released; the session starts fresh.
	if err := sess.Start(); err != nil {
		t.Fatalf("Restart after failed finalize failed: %v", err)
	}
	sess.Stop()
}

// TestStopFinalizesAndUploads verifies the ordered store reaches the encoder
// and the encoded blob reaches the uploader.
func TestStopFinalizesAndUploads(t *testing.T) {
	var grabs int64
	enc := &fakeEncoder{out: []byte("encoded-video")}
	up := &fakeUploader{}
	sess := NewSession(Config{
		CameraID:       "cam1",
		MaxDuration:    10 * time.Second,
		SampleInterval: 10 * time.Millisecond,
	}, countingGrabber(&grabs), enc, up)

	if err := sess.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitFor(t, func() bool { return atomic.LoadInt64(&grabs) >= 3 }, "Sampler never pulled frames")

	if err := sess.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if calls, frames := enc.snapshot(); calls != 1 || frames < 3 {
		t.Errorf("Expected one encode of >=3 frames, got calls=%d frames=%d", calls, frames)
	}
	if up.count() != 1 {
		t.Fatalf("Expected one upload, got %d", up.count())
	}
	if string(up.video) != "encoded-video" {
		t.Errorf("Uploader received %q, want the encoder output", up.video)
	}
	if sess.State() != StateIdle {
		t.Errorf("Expected state idle, got %s", sess.State())
	}
}

// TestStopHaltsSampling verifies the sampling loop observes the stop signal:
// no frames are pulled after Stop returns.
func TestStopHaltsSampling(t *testing.T) {
	var grabs int64
	sess := NewSession(Config{
		CameraID:       "cam1",
		MaxDuration:    10 * time.Second,
		SampleInterval: 10 * time.Millisecond,
	}, countingGrabber(&grabs), &fakeEncoder{out: []byte("v")}, nil)

	sess.Start()
	waitFor(t, func() bool { return atomic.LoadInt64(&grabs) >= 2 }, "Sampler never pulled frames")
	if err := sess.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	after := atomic.LoadInt64(&grabs)
	time.Sleep(100 * time.Millisecond)
	if got := atomic.LoadInt64(&grabs); got != after {
		t.Errorf("Sampler pulled %d frames after Stop returned", got-after)
	}
}

// TestEncodeFailureLeavesSessionIdle verifies an encoder error surfaces to
// the Stop caller while the session still cleans up.
func TestEncodeFailureLeavesSessionIdle(t *testing.T) {
	var grabs int64
	encErr := errors.New("codec exploded")
	enc := &fakeEncoder{err: encErr}
	up := &fakeUploader{}
	sess := NewSession(Config{
		CameraID:       "cam1",
		MaxDuration:    10 * time.Second,
		SampleInterval: 10 * time.Millisecond,
	}, countingGrabber(&grabs), enc, up)

	sess.Start()
	waitFor(t, func() bool { return atomic.LoadInt64(&grabs) >= 1 }, "Sampler never pulled frames")

	err := sess.Stop()
	if !errors.Is(err, encErr) {
		t.Errorf("Expected encode error, got %v", err)
	}
	if sess.State() != StateIdle {
		t.Errorf("Expected state idle after encode failure, got %s", sess.State())
	}
	if up.count() != 0 {
		t.Errorf("Uploader should not run after encode failure, got %d calls", up.count())
	}
	if err := sess.Start(); err != nil {
		t.Fatalf("Restart after encode failure failed: %v", err)
	}
	sess.Stop()
}

// TestUploadFailureStillCleansUp verifies an upload error is reported but
// does not prevent the session from returning to Idle.
func TestUploadFailureStillCleansUp(t *testing.T) {
	var grabs int64
	upErr := errors.New("store unreachable")
	sess := NewSession(Config{
		CameraID:       "cam1",
		MaxDuration:    10 * time.Second,
		SampleInterval: 10 * time.Millisecond,
	}, countingGrabber(&grabs), &fakeEncoder{out: []byte("v")}, &fakeUploader{err: upErr})

	sess.Start()
	waitFor(t, func() bool { return atomic.LoadInt64(&grabs) >= 1 }, "Sampler never pulled frames")

	err := sess.Stop()
	if !errors.Is(err, upErr) {
		t.Errorf("Expected upload error, got %v", err)
	}
	if sess.State() != StateIdle {
		t.Errorf("Expected state idle after upload failure, got %s", sess.State())
	}
	if err := sess.Start(); err != nil {
		t.Fatalf("Restart after upload failure failed: %v", err)
	}
	sess.Stop()
}
