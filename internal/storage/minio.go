package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"

	"github.com/chandlerburket/security-camera/internal/config"
)

// MinioStore persists objects in an S3-compatible bucket.
type MinioStore struct {
	client       *minio.Client
	bucket       string
	motionFolder string
	videoFolder  string
	useSSL       bool
}

// NewMinioStore connects to the configured endpoint and makes sure the
// bucket exists.
func NewMinioStore(ctx context.Context, cfg *config.Server) (*MinioStore, error) {
	if cfg.StorageAccess == "" || cfg.StorageSecret == "" {
		return nil, fmt.Errorf("storage credentials not configured")
	}

	client, err := minio.New(cfg.StorageEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.StorageAccess, cfg.StorageSecret, ""),
		Secure: cfg.StorageUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	bucketCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.MakeBucket(bucketCtx, cfg.StorageBucket, minio.MakeBucketOptions{}); err != nil {
		exists, existsErr := client.BucketExists(bucketCtx, cfg.StorageBucket)
		if existsErr != nil || !exists {
			return nil, fmt.Errorf("ensure bucket %s: %w", cfg.StorageBucket, err)
		}
	}

	log.Info().
		Str("endpoint", cfg.StorageEndpoint).
		Str("bucket", cfg.StorageBucket).
		Msg("Object storage connected")

	return &MinioStore{
		client:       client,
		bucket:       cfg.StorageBucket,
		motionFolder: cfg.MotionFolder,
		videoFolder:  cfg.VideoFolder,
		useSSL:       cfg.StorageUseSSL,
	}, nil
}

// SaveMotionImage stores a motion capture under the camera's folder.
func (s *MinioStore) SaveMotionImage(ctx context.Context, cameraID string, data []byte, ts time.Time) (Saved, error) {
	filename := motionFilename(ts)
	key := path.Join(s.motionFolder, cameraID, filename)
	return s.put(ctx, key, filename, data, "image/jpeg")
}

// SaveRecording stores a finished recording under the camera's folder.
func (s *MinioStore) SaveRecording(ctx context.Context, cameraID string, data []byte, ts time.Time) (Saved, error) {
	filename := recordingFilename(ts)
	key := path.Join(s.videoFolder, cameraID, filename)
	return s.put(ctx, key, filename, data, "video/mp4")
}

func (s *MinioStore) put(ctx context.Context, key, filename string, data []byte, contentType string) (Saved, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return Saved{}, fmt.Errorf("put object %s: %w", key, err)
	}

	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	location := fmt.Sprintf("%s://%s/%s/%s", scheme, s.client.EndpointURL().Host, s.bucket, key)

	log.Debug().
		Str("key", key).
		Int("bytes", len(data)).
		Msg("Object stored")

	return Saved{
		Key:      key,
		Filename: filename,
		Size:     int64(len(data)),
		Location: location,
	}, nil
}
