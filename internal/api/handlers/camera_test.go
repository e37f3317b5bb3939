package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chandlerburket/security-camera/internal/config"
	"github.com/chandlerburket/security-camera/internal/models"
	"github.com/chandlerburket/security-camera/internal/registry"
	"github.com/chandlerburket/security-camera/internal/services/ingest"
	"github.com/chandlerburket/security-camera/internal/storage"
)

type fakeStore struct {
	mu      sync.Mutex
	motions int
	videos  int
}

func (f *fakeStore) SaveMotionImage(ctx context.Context, cameraID string, data []byte, ts time.Time) (storage.Saved, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.motions++
	return storage.Saved{Filename: "motion_test.jpg", Size: int64(len(data))}, nil
}

func (f *fakeStore) SaveRecording(ctx context.Context, cameraID string, data []byte, ts time.Time) (storage.Saved, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.videos++
	return storage.Saved{Filename: "recording_test.mp4", Size: int64(len(data))}, nil
}

type fixture struct {
	cfg      *config.Server
	registry *registry.Registry
	router   *gin.Engine
}

// newFixture wires the aggregator handlers onto a fresh router backed by an
// in-memory registry and a fake object store.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Server{
		Version:           "test",
		SaveInterval:      time.Minute,
		NotifyInterval:    time.Minute,
		FrameStaleAfter:   time.Minute,
		PlaceholderWidth:  64,
		PlaceholderHeight: 48,
	}
	reg := registry.New()
	t.Cleanup(reg.Close)

	ingestSvc := ingest.NewService(cfg, reg, &fakeStore{}, nil, nil)

	camera := NewCameraHandler(ingestSvc)
	video := NewVideoHandler(cfg, reg)
	system := NewSystemHandler(reg, ingestSvc, nil)
	health := NewHealthHandler(cfg.Version)
	ui := NewUIHandler()

	router := gin.New()
	router.GET("/", ui.Index)
	router.POST("/api/camera/frame", camera.ReceiveFrame)
	router.POST("/api/camera/motion-image", camera.ReceiveMotionImage)
	router.POST("/api/camera/video", camera.ReceiveVideo)
	router.POST("/api/camera/status", camera.ReceiveStatus)
	router.GET("/video_feed", video.VideoFeed)
	router.GET("/status", video.GetCameraStatus)
	router.GET("/cameras", video.ListCameras)
	router.POST("/start-recording", video.StartRecording)
	router.POST("/stop-recording", video.StopRecording)
	router.POST("/webhook", system.DoorWebhook)
	router.GET("/door-status", system.DoorStatus)
	router.GET("/system/stats", system.GetStats)
	router.GET("/health", health.HealthCheck)

	return &fixture{cfg: cfg, registry: reg, router: router}
}

func (f *fixture) do(method, target string, body []byte, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func jpegBytes() []byte {
	return []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 0x4a, 0x46}
}

func decodeUpload(t *testing.T, w *httptest.ResponseRecorder) models.UploadResponse {
	t.Helper()
	var resp models.UploadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response %q: %v", w.Body.String(), err)
	}
	return resp
}

func decodeReply(t *testing.T, w *httptest.ResponseRecorder) models.StatusReply {
	t.Helper()
	var reply models.StatusReply
	if err := json.Unmarshal(w.Body.Bytes(), &reply); err != nil {
		t.Fatalf("decoding reply %q: %v", w.Body.String(), err)
	}
	return reply
}

// TestReceiveFramePublishesToRegistry verifies an uploaded frame lands in
// the camera's buffer and is acknowledged.
func TestReceiveFramePublishesToRegistry(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/camera/frame", jpegBytes(), map[string]string{"X-Camera-ID": "front-door"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if resp := decodeUpload(t, w); resp.Status != "ok" {
		t.Fatalf("expected ok, got %+v", resp)
	}

	entry, ok := f.registry.Get("front-door")
	if !ok {
		t.Fatal("expected the camera to be registered")
	}
	frame, ok := entry.Frames().Latest()
	if !ok || !bytes.Equal(frame.Data, jpegBytes()) {
		t.Fatalf("unexpected buffered frame ok=%v", ok)
	}
}

// TestReceiveFrameDefaultsCameraID verifies the fallback node identity when
// no header is sent.
func TestReceiveFrameDefaultsCameraID(t *testing.T) {
	f := newFixture(t)

	f.do(http.MethodPost, "/api/camera/frame", jpegBytes(), nil)

	if _, ok := f.registry.Get("camera1"); !ok {
		t.Fatal("expected the default camera to be registered")
	}
}

// TestReceiveFrameRejectsBadUploads verifies empty and non-JPEG bodies are
// refused before touching the registry.
func TestReceiveFrameRejectsBadUploads(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/camera/frame", nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty body: expected 400, got %d", w.Code)
	}

	w = f.do(http.MethodPost, "/api/camera/frame", []byte("not a jpeg"), nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad magic: expected 400, got %d", w.Code)
	}
	if resp := decodeUpload(t, w); resp.Status != "error" || resp.Error == "" {
		t.Errorf("expected error envelope, got %+v", resp)
	}

	if _, ok := f.registry.Get("camera1"); ok {
		t.Error("rejected uploads must not register a camera")
	}
}

// TestReceiveMotionImageThrottled verifies the ok/skipped envelope across
// the per-camera save interval.
func TestReceiveMotionImageThrottled(t *testing.T) {
	f := newFixture(t)
	header := map[string]string{"X-Camera-ID": "front-door"}

	w := f.do(http.MethodPost, "/api/camera/motion-image", jpegBytes(), header)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeUpload(t, w)
	if resp.Status != "ok" || resp.Filename == "" {
		t.Fatalf("expected stored capture, got %+v", resp)
	}

	w = f.do(http.MethodPost, "/api/camera/motion-image", jpegBytes(), header)
	if resp := decodeUpload(t, w); resp.Status != "skipped" {
		t.Fatalf("expected skipped on repeat capture, got %+v", resp)
	}
}

// TestReceiveVideoReportsStoredSize verifies recordings are acknowledged
// with filename and byte size.
func TestReceiveVideoReportsStoredSize(t *testing.T) {
	f := newFixture(t)

	body := []byte("mp4-bytes")
	w := f.do(http.MethodPost, "/api/camera/video", body, map[string]string{"X-Camera-ID": "garage"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := decodeUpload(t, w)
	if resp.Status != "ok" || resp.Filename != "recording_test.mp4" || resp.Size != int64(len(body)) {
		t.Fatalf("unexpected response %+v", resp)
	}
}

// TestReceiveStatusDeliversCommandOnce verifies the heartbeat reply carries
// a queued command exactly once.
func TestReceiveStatusDeliversCommandOnce(t *testing.T) {
	f := newFixture(t)

	report, _ := json.Marshal(models.HeartbeatReport{CameraID: "front-door"})

	w := f.do(http.MethodPost, "/api/camera/status", report, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if reply := decodeReply(t, w); reply.Status != "ok" || reply.Command != "" {
		t.Fatalf("expected empty reply, got %+v", reply)
	}

	entry, _ := f.registry.Get("front-door")
	entry.EnqueueCommand(models.CommandStartRecording)

	w = f.do(http.MethodPost, "/api/camera/status", report, nil)
	if reply := decodeReply(t, w); reply.Command != models.CommandStartRecording {
		t.Fatalf("expected start_recording, got %+v", reply)
	}

	w = f.do(http.MethodPost, "/api/camera/status", report, nil)
	if reply := decodeReply(t, w); reply.Command != "" {
		t.Fatalf("expected drained mailbox, got %+v", reply)
	}
}

// TestReceiveStatusRequiresCameraID verifies binding rejects anonymous
// heartbeats.
func TestReceiveStatusRequiresCameraID(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/camera/status", []byte(`{"motion_detected":true}`), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}
