package models

import (
	"time"
)

// Command represents a recording command relayed from the aggregator to a
// camera node through the status exchange.
type Command string

const (
	CommandStartRecording Command = "start_recording"
	CommandStopRecording  Command = "stop_recording"
)

// String returns the string representation of Command
func (c Command) String() string {
	return string(c)
}

// IsValid checks if the command is valid
func (c Command) IsValid() bool {
	switch c {
	case CommandStartRecording, CommandStopRecording:
		return true
	default:
		return false
	}
}

// HeartbeatReport is the status payload a camera node POSTs to the
// aggregator every status interval. Field names are the wire format the
// nodes and the aggregator agree on; LastMotionTime is unix seconds.
type HeartbeatReport struct {
	CameraID       string  `json:"camera_id" binding:"required"`
	MotionDetected bool    `json:"motion_detected"`
	LastMotionTime float64 `json:"last_motion_time"`
	Recording      bool    `json:"recording"`

	// System telemetry. Temp and uptime are preformatted strings ("45.2°C",
	// "3h 24m") with "Unknown" as the fallback, matching what the UI shows.
	CPUTemp     string  `json:"cpu_temp"`
	Uptime      string  `json:"uptime"`
	WifiDBm     *int    `json:"wifi_signal_dbm,omitempty"`
	WifiQuality string  `json:"wifi_signal_quality,omitempty"`
	CPUPercent  float64 `json:"cpu_percent,omitempty"`
	MemoryMB    float64 `json:"memory_mb,omitempty"`
}

// StatusReply is the aggregator's answer to a heartbeat. Command is set when
// a mailbox entry was pending for the camera and is delivered exactly once.
type StatusReply struct {
	Status  string  `json:"status"`
	Command Command `json:"command,omitempty"`
}

// UploadResponse is returned for frame, motion-image and video uploads.
// Status is "ok", "skipped" (throttled) or "error".
type UploadResponse struct {
	Status   string `json:"status"`
	Filename string `json:"filename,omitempty"`
	Size     int64  `json:"size,omitempty"`
	Error    string `json:"error,omitempty"`
}

// CameraStatusResponse is the operator-facing snapshot of one camera,
// served by the aggregator status endpoint.
type CameraStatusResponse struct {
	Status         string  `json:"status"`
	CameraID       string  `json:"camera_id"`
	MotionDetected bool    `json:"motion_detected"`
	LastMotionTime float64 `json:"last_motion_time"`
	Recording      bool    `json:"recording"`
	CPUTemp        string  `json:"cpu_temp"`
	Uptime         string  `json:"uptime"`
	WifiDBm        *int    `json:"wifi_signal_dbm"`
	WifiPercent    *int    `json:"wifi_signal_percent"`
	WifiQuality    string  `json:"wifi_signal_quality"`
	StorageEnabled bool    `json:"storage_enabled"`
	PushEnabled    bool    `json:"push_enabled"`
	LastFrameTime  float64 `json:"last_frame_time"`
	LastUpdate     float64 `json:"last_update"`
}

// CameraListEntry summarizes one registered camera for the list endpoint.
type CameraListEntry struct {
	CameraID       string    `json:"camera_id"`
	MotionDetected bool      `json:"motion_detected"`
	Recording      bool      `json:"recording"`
	LastFrameTime  time.Time `json:"last_frame_time"`
	LastUpdate     time.Time `json:"last_update"`
	FeedURL        string    `json:"feed_url"`
}

// DoorEvent is the webhook/MQTT payload third-party door sensors send.
type DoorEvent struct {
	DoorState string  `json:"door_state" binding:"required"`
	Timestamp float64 `json:"timestamp"`
	Device    string  `json:"device"`
}

// DoorStatusResponse reports the last seen door event. TimeAgo is seconds
// since the event arrived; nil when no event was ever received.
type DoorStatusResponse struct {
	DoorState   *string  `json:"door_state"`
	Timestamp   *float64 `json:"timestamp"`
	Device      *string  `json:"device"`
	LastUpdated *float64 `json:"last_updated"`
	TimeAgo     *float64 `json:"time_ago"`
}

// UnixSeconds converts a timestamp to the float unix seconds used on the
// wire. The zero time maps to 0, the "never" marker.
func UnixSeconds(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return float64(t.UnixNano()) / float64(time.Second)
}

// Wifi signal banding shared by node (quality string in heartbeats) and
// aggregator (percent in status responses).

// WifiQualityForDBm maps a signal level to the quality label shown in the UI.
func WifiQualityForDBm(dbm int) string {
	switch {
	case dbm >= -30:
		return "Excellent"
	case dbm >= -67:
		return "Good"
	case dbm >= -70:
		return "Fair"
	case dbm >= -80:
		return "Weak"
	default:
		return "Poor"
	}
}

// WifiPercentForDBm maps a signal level to the coarse percentage the
// status endpoint reports.
func WifiPercentForDBm(dbm int) int {
	switch {
	case dbm >= -30:
		return 100
	case dbm >= -67:
		return 70
	case dbm >= -70:
		return 50
	case dbm >= -80:
		return 30
	default:
		return 10
	}
}
