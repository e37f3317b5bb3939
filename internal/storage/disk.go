package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// DiskStore writes objects under a local data directory. It is the default
// when no S3 endpoint is configured.
type DiskStore struct {
	root         string
	motionFolder string
	videoFolder  string
}

// NewDiskStore creates the data directory if needed.
func NewDiskStore(root, motionFolder, videoFolder string) (*DiskStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	log.Info().
		Str("path", abs).
		Msg("Local storage ready")

	return &DiskStore{
		root:         abs,
		motionFolder: motionFolder,
		videoFolder:  videoFolder,
	}, nil
}

// SaveMotionImage writes a motion capture under the camera's folder.
func (s *DiskStore) SaveMotionImage(ctx context.Context, cameraID string, data []byte, ts time.Time) (Saved, error) {
	filename := motionFilename(ts)
	return s.write(filepath.Join(s.motionFolder, cameraID), filename, data)
}

// SaveRecording writes a finished recording under the camera's folder.
func (s *DiskStore) SaveRecording(ctx context.Context, cameraID string, data []byte, ts time.Time) (Saved, error) {
	filename := recordingFilename(ts)
	return s.write(filepath.Join(s.videoFolder, cameraID), filename, data)
}

func (s *DiskStore) write(dir, filename string, data []byte) (Saved, error) {
	full := filepath.Join(s.root, dir)
	if err := os.MkdirAll(full, 0o755); err != nil {
		return Saved{}, fmt.Errorf("create folder %s: %w", dir, err)
	}

	target := filepath.Join(full, filename)
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return Saved{}, fmt.Errorf("write %s: %w", filename, err)
	}

	log.Debug().
		Str("path", target).
		Int("bytes", len(data)).
		Msg("File stored")

	return Saved{
		Key:      filepath.ToSlash(filepath.Join(dir, filename)),
		Filename: filename,
		Size:     int64(len(data)),
		Location: target,
	}, nil
}
