package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/chandlerburket/security-camera/internal/models"
)

// Config holds the aggregator endpoint and the per-operation timeouts. Frame
// uploads use a short timeout so a stalled server is noticed within one
// capture tick; video uploads get a large one for the blob size.
type Config struct {
	ServerURL string
	CameraID  string

	FrameTimeout  time.Duration
	StatusTimeout time.Duration
	ImageTimeout  time.Duration
	VideoTimeout  time.Duration
}

// Client speaks the node side of the aggregator REST protocol. All uploads
// carry the camera identifier in the X-Camera-ID header.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient builds a client. Timeouts default to the protocol's usual values
// when unset.
func NewClient(cfg Config) *Client {
	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")
	if cfg.FrameTimeout <= 0 {
		cfg.FrameTimeout = 1 * time.Second
	}
	if cfg.StatusTimeout <= 0 {
		cfg.StatusTimeout = 5 * time.Second
	}
	if cfg.ImageTimeout <= 0 {
		cfg.ImageTimeout = 5 * time.Second
	}
	if cfg.VideoTimeout <= 0 {
		cfg.VideoTimeout = 60 * time.Second
	}

	return &Client{
		cfg: cfg,
		// Per-operation deadlines are applied via request contexts, so the
		// client itself carries no global timeout.
		http: &http.Client{},
	}
}

// SendFrame uploads one JPEG to the aggregator's live frame slot.
func (c *Client) SendFrame(ctx context.Context, frame []byte) error {
	return c.post(ctx, "/api/camera/frame", "image/jpeg", frame, c.cfg.FrameTimeout, nil)
}

// SendMotionImage uploads a motion capture. The aggregator throttles how
// often captures are stored; a throttled upload reports uploaded=false with
// no error.
func (c *Client) SendMotionImage(ctx context.Context, frame []byte) (bool, error) {
	var resp models.UploadResponse
	if err := c.post(ctx, "/api/camera/motion-image", "image/jpeg", frame, c.cfg.ImageTimeout, &resp); err != nil {
		return false, err
	}

	switch resp.Status {
	case "ok":
		log.Info().
			Str("camera_id", c.cfg.CameraID).
			Str("filename", resp.Filename).
			Msg("Motion image uploaded")
		return true, nil
	case "skipped":
		return false, nil
	default:
		return false, fmt.Errorf("relay: motion image rejected: %s", resp.Error)
	}
}

// UploadVideo ships a finalized recording. Satisfies recording.Uploader.
func (c *Client) UploadVideo(ctx context.Context, video []byte, startedAt time.Time) error {
	var resp models.UploadResponse
	if err := c.post(ctx, "/api/camera/video", "video/mp4", video, c.cfg.VideoTimeout, &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return fmt.Errorf("relay: video rejected: %s", resp.Error)
	}

	log.Info().
		Str("camera_id", c.cfg.CameraID).
		Str("filename", resp.Filename).
		Int64("size_bytes", resp.Size).
		Msg("Video uploaded")

	return nil
}

// SendStatus posts a heartbeat and returns the aggregator's reply, which may
// carry one pending command.
func (c *Client) SendStatus(ctx context.Context, report models.HeartbeatReport) (models.StatusReply, error) {
	body, err := json.Marshal(report)
	if err != nil {
		return models.StatusReply{}, fmt.Errorf("relay: marshal status: %w", err)
	}

	var reply models.StatusReply
	if err := c.post(ctx, "/api/camera/status", "application/json", body, c.cfg.StatusTimeout, &reply); err != nil {
		return models.StatusReply{}, err
	}
	return reply, nil
}

func (c *Client) post(ctx context.Context, path, contentType string, body []byte, timeout time.Duration, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.ServerURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("relay: build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Camera-ID", c.cfg.CameraID)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("relay: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("relay: %s returned HTTP %d", path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("relay: decode %s response: %w", path, err)
		}
	}
	return nil
}
