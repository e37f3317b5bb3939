package handlers

import (
	"encoding/json"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chandlerburket/security-camera/internal/models"
)

// TestVideoFeedStreamsFrames verifies the MJPEG endpoint auto-registers the
// camera, opens a multipart stream and delivers published frames.
func TestVideoFeedStreamsFrames(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/video_feed?camera_id=front-door")
	if err != nil {
		t.Fatalf("connecting to feed: %v", err)
	}
	defer resp.Body.Close()

	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/x-mixed-replace" {
		t.Fatalf("unexpected content type %q (%v)", resp.Header.Get("Content-Type"), err)
	}

	entry, ok := f.registry.Get("front-door")
	if !ok {
		t.Fatal("expected the feed to register the camera")
	}

	reader := multipart.NewReader(resp.Body, params["boundary"])

	// No frame has arrived yet, so the stream opens with the placeholder.
	part, err := reader.NextPart()
	if err != nil {
		t.Fatalf("reading opening part: %v", err)
	}
	if ct := part.Header.Get("Content-Type"); ct != "image/jpeg" {
		t.Fatalf("unexpected part content type %q", ct)
	}
	part.Close()

	if err := entry.PublishFrame(jpegBytes()); err != nil {
		t.Fatalf("publishing frame: %v", err)
	}
	if _, err := reader.NextPart(); err != nil {
		t.Fatalf("reading published frame: %v", err)
	}

	f.registry.Close()
	if _, err := reader.NextPart(); err == nil {
		t.Error("expected the stream to end once the registry closed")
	}
}

func decodeStatus(t *testing.T, w *httptest.ResponseRecorder) models.CameraStatusResponse {
	t.Helper()
	var resp models.CameraStatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding status %q: %v", w.Body.String(), err)
	}
	return resp
}

// TestGetCameraStatusDefaults verifies an unseen camera is auto-registered
// and reported with the Unknown telemetry fallbacks.
func TestGetCameraStatusDefaults(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/status?camera_id=porch", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := decodeStatus(t, w)
	if resp.Status != "running" || resp.CameraID != "porch" {
		t.Errorf("unexpected identity %+v", resp)
	}
	if resp.CPUTemp != "Unknown" || resp.Uptime != "Unknown" {
		t.Errorf("expected Unknown telemetry, got %+v", resp)
	}
	if resp.WifiPercent != nil || resp.WifiDBm != nil {
		t.Errorf("expected wifi fields to stay null, got %+v", resp)
	}
	if resp.LastUpdate != 0 || resp.LastFrameTime != 0 {
		t.Errorf("expected never-seen timestamps, got %+v", resp)
	}

	if _, ok := f.registry.Get("porch"); !ok {
		t.Error("expected the status poll to register the camera")
	}
}

// TestGetCameraStatusMirrorsHeartbeat verifies reported state and the wifi
// percent banding surface on the status endpoint.
func TestGetCameraStatusMirrorsHeartbeat(t *testing.T) {
	f := newFixture(t)

	dbm := -65
	f.registry.GetOrCreate("front-door").UpdateReport(models.HeartbeatReport{
		CameraID:       "front-door",
		MotionDetected: true,
		Recording:      true,
		CPUTemp:        "48.1°C",
		Uptime:         "2h 10m",
		WifiDBm:        &dbm,
		WifiQuality:    "Good",
	})

	w := f.do(http.MethodGet, "/status?camera_id=front-door", nil, nil)
	resp := decodeStatus(t, w)

	if !resp.MotionDetected || !resp.Recording {
		t.Errorf("expected mirrored flags, got %+v", resp)
	}
	if resp.CPUTemp != "48.1°C" || resp.Uptime != "2h 10m" {
		t.Errorf("expected reported telemetry, got %+v", resp)
	}
	if resp.WifiPercent == nil || *resp.WifiPercent != 70 {
		t.Errorf("expected 70%% for -65 dBm, got %+v", resp.WifiPercent)
	}
	if resp.WifiQuality != "Good" {
		t.Errorf("expected quality passthrough, got %q", resp.WifiQuality)
	}
	if resp.LastUpdate == 0 {
		t.Error("expected last_update to be stamped")
	}
}

// TestListCameras verifies the camera inventory with per-camera feed URLs.
func TestListCameras(t *testing.T) {
	f := newFixture(t)
	f.registry.GetOrCreate("front-door")
	f.registry.GetOrCreate("garage")

	w := f.do(http.MethodGet, "/cameras", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Cameras []models.CameraListEntry `json:"cameras"`
		Count   int                      `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding list %q: %v", w.Body.String(), err)
	}
	if resp.Count != 2 || len(resp.Cameras) != 2 {
		t.Fatalf("expected 2 cameras, got %+v", resp)
	}

	found := map[string]string{}
	for _, cam := range resp.Cameras {
		found[cam.CameraID] = cam.FeedURL
	}
	if found["front-door"] != "/video_feed?camera_id=front-door" {
		t.Errorf("unexpected feed url %q", found["front-door"])
	}
}

// TestRecordingCommandsQueueForHeartbeat verifies the operator endpoints
// place commands in the mailbox with last-write-wins semantics.
func TestRecordingCommandsQueueForHeartbeat(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/start-recording?camera_id=front-door", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body["status"] != "success" || body["message"] != "Recording start command sent" {
		t.Fatalf("unexpected body %v", body)
	}

	f.do(http.MethodPost, "/stop-recording?camera_id=front-door", nil, nil)

	entry, _ := f.registry.Get("front-door")
	cmd, ok := entry.DrainCommand()
	if !ok || cmd != models.CommandStopRecording {
		t.Fatalf("expected the later stop command, got %v ok=%v", cmd, ok)
	}
	if _, ok := entry.DrainCommand(); ok {
		t.Error("expected the mailbox to hold at most one command")
	}
}

// TestRecordingCommandDefaultsCamera verifies the single-camera default on
// the operator endpoints.
func TestRecordingCommandDefaultsCamera(t *testing.T) {
	f := newFixture(t)

	f.do(http.MethodPost, "/start-recording", nil, nil)

	entry, ok := f.registry.Get("camera1")
	if !ok {
		t.Fatal("expected the default camera to be registered")
	}
	if cmd, ok := entry.DrainCommand(); !ok || cmd != models.CommandStartRecording {
		t.Fatalf("expected start command, got %v ok=%v", cmd, ok)
	}
}
