package models

import (
	"time"
)

// MotionEvent is published when a camera's mirrored motion state flips.
type MotionEvent struct {
	CameraID       string    `json:"camera_id"`
	MotionDetected bool      `json:"motion_detected"`
	LastMotionTime float64   `json:"last_motion_time"`
	Timestamp      time.Time `json:"timestamp"`
}

// RecordingEvent is published when a finished recording lands in storage.
type RecordingEvent struct {
	CameraID  string    `json:"camera_id"`
	Filename  string    `json:"filename"`
	Size      int64     `json:"size_bytes"`
	Location  string    `json:"location,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// MotionCaptureEvent is published when a motion still lands in storage.
type MotionCaptureEvent struct {
	CameraID  string    `json:"camera_id"`
	Filename  string    `json:"filename"`
	Size      int64     `json:"size_bytes"`
	Location  string    `json:"location,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// DoorSensorEvent mirrors a door webhook/MQTT message onto NATS.
type DoorSensorEvent struct {
	DoorState string    `json:"door_state"`
	Device    string    `json:"device"`
	Timestamp time.Time `json:"timestamp"`
}
