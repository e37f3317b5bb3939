package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chandlerburket/security-camera/internal/helpers"
	"github.com/chandlerburket/security-camera/internal/logging"
	"github.com/chandlerburket/security-camera/internal/models"
	"github.com/chandlerburket/security-camera/internal/services/ingest"
)

// cameraIDHeader identifies the uploading node on the binary endpoints.
const cameraIDHeader = "X-Camera-ID"

// defaultCameraID is assumed when a node or operator names no camera,
// matching the single-camera deployments this grew out of.
const defaultCameraID = "camera1"

type CameraHandler struct {
	ingestService *ingest.Service
}

func NewCameraHandler(ingestService *ingest.Service) *CameraHandler {
	return &CameraHandler{
		ingestService: ingestService,
	}
}

func cameraIDFromHeader(c *gin.Context) string {
	id := c.GetHeader(cameraIDHeader)
	if id == "" {
		id = defaultCameraID
	}
	c.Set("camera_id", id)
	return id
}

func cameraIDFromQuery(c *gin.Context) string {
	id := c.DefaultQuery("camera_id", defaultCameraID)
	c.Set("camera_id", id)
	return id
}

// ReceiveFrame ingests a live frame from a camera node
// @Summary Upload a live frame
// @Description Receive the latest JPEG frame from a camera node and hand it to stream viewers
// @Tags ingest
// @Accept image/jpeg
// @Produce json
// @Param X-Camera-ID header string false "Camera ID" default(camera1)
// @Success 200 {object} models.UploadResponse
// @Failure 400 {object} models.UploadResponse
// @Failure 500 {object} models.UploadResponse
// @Router /api/camera/frame [post]
func (h *CameraHandler) ReceiveFrame(c *gin.Context) {
	cameraID := cameraIDFromHeader(c)

	data, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.UploadResponse{Status: "error", Error: err.Error()})
		return
	}
	if len(data) == 0 {
		c.JSON(http.StatusBadRequest, models.UploadResponse{Status: "error", Error: "empty frame body"})
		return
	}
	if !helpers.IsJPEG(data) {
		c.JSON(http.StatusBadRequest, models.UploadResponse{Status: "error", Error: "body is not a JPEG image"})
		return
	}

	if err := h.ingestService.HandleFrame(cameraID, data); err != nil {
		logging.Error(c).Err(err).Msg("Failed to publish frame")
		c.JSON(http.StatusInternalServerError, models.UploadResponse{Status: "error", Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.UploadResponse{Status: "ok"})
}

// ReceiveMotionImage ingests a motion capture from a camera node
// @Summary Upload a motion capture
// @Description Store a motion-triggered still and fan out notifications; throttled per camera
// @Tags ingest
// @Accept image/jpeg
// @Produce json
// @Param X-Camera-ID header string false "Camera ID" default(camera1)
// @Success 200 {object} models.UploadResponse
// @Failure 400 {object} models.UploadResponse
// @Failure 500 {object} models.UploadResponse
// @Router /api/camera/motion-image [post]
func (h *CameraHandler) ReceiveMotionImage(c *gin.Context) {
	cameraID := cameraIDFromHeader(c)

	data, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.UploadResponse{Status: "error", Error: err.Error()})
		return
	}
	if len(data) == 0 {
		c.JSON(http.StatusBadRequest, models.UploadResponse{Status: "error", Error: "empty image body"})
		return
	}
	if !helpers.IsJPEG(data) {
		logging.Warn(c).Int("bytes", len(data)).Msg("Rejected non-JPEG motion capture")
		c.JSON(http.StatusBadRequest, models.UploadResponse{Status: "error", Error: "body is not a JPEG image"})
		return
	}

	saved, ok, err := h.ingestService.HandleMotionImage(c.Request.Context(), cameraID, data)
	if err != nil {
		logging.Error(c).Err(err).Msg("Failed to store motion capture")
		c.JSON(http.StatusInternalServerError, models.UploadResponse{Status: "error", Error: err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusOK, models.UploadResponse{Status: "skipped"})
		return
	}

	c.JSON(http.StatusOK, models.UploadResponse{Status: "ok", Filename: saved.Filename})
}

// ReceiveVideo ingests a finished recording from a camera node
// @Summary Upload a recording
// @Description Store a finalized MP4 recording in the object store
// @Tags ingest
// @Accept video/mp4
// @Produce json
// @Param X-Camera-ID header string false "Camera ID" default(camera1)
// @Success 200 {object} models.UploadResponse
// @Failure 400 {object} models.UploadResponse
// @Failure 500 {object} models.UploadResponse
// @Router /api/camera/video [post]
func (h *CameraHandler) ReceiveVideo(c *gin.Context) {
	cameraID := cameraIDFromHeader(c)

	data, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.UploadResponse{Status: "error", Error: err.Error()})
		return
	}
	if len(data) == 0 {
		c.JSON(http.StatusBadRequest, models.UploadResponse{Status: "error", Error: "empty video body"})
		return
	}

	saved, err := h.ingestService.HandleVideo(c.Request.Context(), cameraID, data)
	if err != nil {
		logging.Error(c).Err(err).Msg("Failed to store recording")
		c.JSON(http.StatusInternalServerError, models.UploadResponse{Status: "error", Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.UploadResponse{Status: "ok", Filename: saved.Filename, Size: saved.Size})
}

// ReceiveStatus handles a heartbeat from a camera node
// @Summary Camera heartbeat
// @Description Mirror the node's reported state and deliver at most one pending recording command
// @Tags ingest
// @Accept json
// @Produce json
// @Param report body models.HeartbeatReport true "Heartbeat report"
// @Success 200 {object} models.StatusReply
// @Failure 400 {object} map[string]string
// @Router /api/camera/status [post]
func (h *CameraHandler) ReceiveStatus(c *gin.Context) {
	var report models.HeartbeatReport
	if err := c.ShouldBindJSON(&report); err != nil {
		logging.Error(c).Err(err).Msg("Invalid heartbeat report")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Set("camera_id", report.CameraID)

	reply := models.StatusReply{Status: "ok"}
	if cmd, ok := h.ingestService.HandleStatus(report); ok {
		reply.Command = cmd
		logging.Info(c).Str("command", cmd.String()).Msg("Command delivered to camera")
	}

	c.JSON(http.StatusOK, reply)
}
