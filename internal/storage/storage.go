package storage

import (
	"context"
	"fmt"
	"time"
)

// Saved describes a persisted object.
type Saved struct {
	// Key is the full object key or relative path inside the store.
	Key string
	// Filename is the bare file name reported back to the uploading node.
	Filename string
	// Size in bytes.
	Size int64
	// Location is a URL or absolute path where the object can be fetched.
	Location string
}

// ObjectStore persists motion captures and finished recordings.
type ObjectStore interface {
	SaveMotionImage(ctx context.Context, cameraID string, data []byte, ts time.Time) (Saved, error)
	SaveRecording(ctx context.Context, cameraID string, data []byte, ts time.Time) (Saved, error)
}

const tsLayout = "20060102_150405"

func motionFilename(ts time.Time) string {
	return fmt.Sprintf("motion_%s.jpg", ts.Format(tsLayout))
}

func recordingFilename(ts time.Time) string {
	return fmt.Sprintf("recording_%s.mp4", ts.Format(tsLayout))
}
