package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chandlerburket/security-camera/internal/logging"
	"github.com/chandlerburket/security-camera/internal/messaging"
	"github.com/chandlerburket/security-camera/internal/models"
	"github.com/chandlerburket/security-camera/internal/registry"
	"github.com/chandlerburket/security-camera/internal/services/ingest"
)

// SystemHandler handles door sensor and system endpoints
type SystemHandler struct {
	registry      *registry.Registry
	ingestService *ingest.Service
	events        *messaging.Service
	startTime     time.Time
}

// NewSystemHandler creates a new system handler. events may be nil when the
// event bus is disabled.
func NewSystemHandler(reg *registry.Registry, ingestService *ingest.Service, events *messaging.Service) *SystemHandler {
	return &SystemHandler{
		registry:      reg,
		ingestService: ingestService,
		events:        events,
		startTime:     time.Now(),
	}
}

// DoorWebhook receives a door sensor event
// @Summary Door sensor webhook
// @Description Store a door state event pushed by a third-party sensor integration
// @Tags sensors
// @Accept json
// @Produce json
// @Param event body models.DoorEvent true "Door sensor event"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /webhook [post]
func (h *SystemHandler) DoorWebhook(c *gin.Context) {
	var event models.DoorEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		logging.Error(c).Err(err).Msg("Invalid door sensor payload")
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}
	if event.Timestamp == 0 {
		event.Timestamp = models.UnixSeconds(time.Now())
	}

	h.ingestService.HandleDoor(event)

	logging.Info(c).
		Str("door_state", event.DoorState).
		Str("device", event.Device).
		Msg("Door sensor webhook received")

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// DoorStatus reports the last door sensor event
// @Summary Door sensor status
// @Description Get the last seen door state with seconds elapsed since it arrived
// @Tags sensors
// @Produce json
// @Success 200 {object} models.DoorStatusResponse
// @Router /door-status [get]
func (h *SystemHandler) DoorStatus(c *gin.Context) {
	event, seen, ok := h.registry.DoorStatus()
	if !ok {
		c.JSON(http.StatusOK, models.DoorStatusResponse{})
		return
	}

	lastUpdated := models.UnixSeconds(seen)
	timeAgo := time.Since(seen).Seconds()

	c.JSON(http.StatusOK, models.DoorStatusResponse{
		DoorState:   &event.DoorState,
		Timestamp:   &event.Timestamp,
		Device:      &event.Device,
		LastUpdated: &lastUpdated,
		TimeAgo:     &timeAgo,
	})
}

// GetStats reports process statistics
// @Summary Get system stats
// @Description Get aggregator process statistics and camera counts
// @Tags system
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /system/stats [get]
func (h *SystemHandler) GetStats(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats": gin.H{
			"cameras":             len(h.registry.Snapshots()),
			"uptime_seconds":      time.Since(h.startTime).Seconds(),
			"memory_mb":           m.Alloc / 1024 / 1024,
			"cpu_cores":           runtime.NumCPU(),
			"goroutines":          runtime.NumGoroutine(),
			"go_version":          runtime.Version(),
			"event_bus_connected": h.events.IsConnected(),
		},
		"timestamp": time.Now().Unix(),
	})
}
