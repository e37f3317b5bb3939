package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/chandlerburket/security-camera/internal/config"
	"github.com/chandlerburket/security-camera/internal/helpers"
	"github.com/chandlerburket/security-camera/internal/logging"
	"github.com/chandlerburket/security-camera/internal/mjpeg"
	"github.com/chandlerburket/security-camera/internal/models"
	"github.com/chandlerburket/security-camera/internal/registry"
)

type VideoHandler struct {
	cfg      *config.Server
	registry *registry.Registry

	// placeholder is served until a camera publishes its first frame.
	placeholder []byte
}

func NewVideoHandler(cfg *config.Server, reg *registry.Registry) *VideoHandler {
	return &VideoHandler{
		cfg:         cfg,
		registry:    reg,
		placeholder: helpers.Placeholder(cfg.PlaceholderWidth, cfg.PlaceholderHeight),
	}
}

// VideoFeed streams a camera as multipart MJPEG
// @Summary Live MJPEG stream
// @Description Stream the camera's frames as multipart/x-mixed-replace JPEG parts until the client disconnects
// @Tags stream
// @Param camera_id query string false "Camera ID" default(camera1)
// @Success 200 {string} string "multipart JPEG stream"
// @Router /video_feed [get]
func (h *VideoHandler) VideoFeed(c *gin.Context) {
	cameraID := cameraIDFromQuery(c)
	entry := h.registry.GetOrCreate(cameraID)

	logging.Debug(c).Str("client", c.ClientIP()).Msg("Stream viewer connected")

	mjpeg.Stream(c.Writer, c.Request, entry.Frames(), mjpeg.Options{
		MaxFPS:      h.cfg.FeedMaxFPS,
		Placeholder: h.placeholder,
		StaleAfter:  h.cfg.FrameStaleAfter,
	})
}

// GetCameraStatus reports the registry snapshot of one camera
// @Summary Camera status snapshot
// @Description Get the last mirrored state of a camera including telemetry and derived wifi percentage
// @Tags cameras
// @Produce json
// @Param camera_id query string false "Camera ID" default(camera1)
// @Success 200 {object} models.CameraStatusResponse
// @Router /status [get]
func (h *VideoHandler) GetCameraStatus(c *gin.Context) {
	cameraID := cameraIDFromQuery(c)
	entry := h.registry.GetOrCreate(cameraID)
	snap := entry.Snapshot()

	resp := models.CameraStatusResponse{
		Status:         "running",
		CameraID:       cameraID,
		MotionDetected: snap.Report.MotionDetected,
		LastMotionTime: snap.Report.LastMotionTime,
		Recording:      snap.Report.Recording,
		CPUTemp:        snap.Report.CPUTemp,
		Uptime:         snap.Report.Uptime,
		WifiDBm:        snap.Report.WifiDBm,
		WifiQuality:    snap.Report.WifiQuality,
		StorageEnabled: h.cfg.StorageEnabled,
		PushEnabled:    h.cfg.PushEnabled,
		LastFrameTime:  models.UnixSeconds(snap.LastFrameTime),
		LastUpdate:     models.UnixSeconds(snap.LastUpdate),
	}
	if resp.CPUTemp == "" {
		resp.CPUTemp = "Unknown"
	}
	if resp.Uptime == "" {
		resp.Uptime = "Unknown"
	}
	if snap.Report.WifiDBm != nil {
		percent := models.WifiPercentForDBm(*snap.Report.WifiDBm)
		resp.WifiPercent = &percent
	}

	c.JSON(http.StatusOK, resp)
}

// ListCameras lists all registered cameras
// @Summary List all cameras
// @Description Get every camera the aggregator has seen with its live state
// @Tags cameras
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /cameras [get]
func (h *VideoHandler) ListCameras(c *gin.Context) {
	snaps := h.registry.Snapshots()

	cameras := make([]models.CameraListEntry, 0, len(snaps))
	for _, snap := range snaps {
		cameras = append(cameras, models.CameraListEntry{
			CameraID:       snap.CameraID,
			MotionDetected: snap.Report.MotionDetected,
			Recording:      snap.Report.Recording,
			LastFrameTime:  snap.LastFrameTime,
			LastUpdate:     snap.LastUpdate,
			FeedURL:        "/video_feed?camera_id=" + url.QueryEscape(snap.CameraID),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"cameras": cameras,
		"count":   len(cameras),
	})
}

// StartRecording queues a start command for a camera
// @Summary Start recording
// @Description Queue a start_recording command; the camera picks it up on its next heartbeat
// @Tags recording
// @Produce json
// @Param camera_id query string false "Camera ID" default(camera1)
// @Success 200 {object} map[string]string
// @Router /start-recording [post]
func (h *VideoHandler) StartRecording(c *gin.Context) {
	cameraID := cameraIDFromQuery(c)
	h.registry.GetOrCreate(cameraID).EnqueueCommand(models.CommandStartRecording)

	logging.Info(c).Msg("Recording start command queued")
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Recording start command sent"})
}

// StopRecording queues a stop command for a camera
// @Summary Stop recording
// @Description Queue a stop_recording command; the camera picks it up on its next heartbeat
// @Tags recording
// @Produce json
// @Param camera_id query string false "Camera ID" default(camera1)
// @Success 200 {object} map[string]string
// @Router /stop-recording [post]
func (h *VideoHandler) StopRecording(c *gin.Context) {
	cameraID := cameraIDFromQuery(c)
	h.registry.GetOrCreate(cameraID).EnqueueCommand(models.CommandStopRecording)

	logging.Info(c).Msg("Recording stop command queued")
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Recording stop command sent"})
}
