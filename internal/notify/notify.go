package notify

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/nfnt/resize"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/chandlerburket/security-camera/internal/config"
)

const requestTimeout = 10 * time.Second

// Notifier pushes motion alerts to a Pushover-compatible API. Alerts are
// throttled per camera so a busy scene does not flood the user's phone.
type Notifier struct {
	url      string
	token    string
	userKey  string
	maxWidth uint

	http     *http.Client
	throttle *cache.Cache
}

// NewNotifier builds a notifier from the aggregator configuration.
func NewNotifier(cfg *config.Server) *Notifier {
	return &Notifier{
		url:      cfg.PushURL,
		token:    cfg.PushToken,
		userKey:  cfg.PushUserKey,
		maxWidth: uint(cfg.PushMaxWidth),
		http:     &http.Client{Timeout: requestTimeout},
		throttle: cache.New(cfg.NotifyInterval, cfg.NotifyInterval),
	}
}

// MotionAlert sends a push notification with the capture attached. Returns
// false when the per-camera throttle suppressed the alert.
func (n *Notifier) MotionAlert(ctx context.Context, cameraID string, image []byte) (bool, error) {
	if err := n.throttle.Add(cameraID, time.Now(), cache.DefaultExpiration); err != nil {
		log.Debug().
			Str("camera_id", cameraID).
			Msg("Motion alert throttled")
		return false, nil
	}

	message := fmt.Sprintf("Motion detected on %s", cameraID)
	if err := n.send(ctx, "Security Camera", message, n.downscale(cameraID, image)); err != nil {
		return false, err
	}

	log.Info().
		Str("camera_id", cameraID).
		Msg("Motion alert sent")
	return true, nil
}

// downscale shrinks captures wider than maxWidth so the push API accepts
// them. On decode trouble the original bytes go out unchanged.
func (n *Notifier) downscale(cameraID string, data []byte) []byte {
	if n.maxWidth == 0 || len(data) == 0 {
		return data
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		log.Warn().
			Err(err).
			Str("camera_id", cameraID).
			Msg("Could not decode capture for downscale, attaching as-is")
		return data
	}

	if uint(img.Bounds().Dx()) <= n.maxWidth {
		return data
	}

	small := resize.Resize(n.maxWidth, 0, img, resize.Lanczos3)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, small, &jpeg.Options{Quality: 85}); err != nil {
		log.Warn().
			Err(err).
			Str("camera_id", cameraID).
			Msg("Could not re-encode downscaled capture, attaching as-is")
		return data
	}
	return buf.Bytes()
}

func (n *Notifier) send(ctx context.Context, title, message string, attachment []byte) error {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	if err := w.WriteField("token", n.token); err != nil {
		return fmt.Errorf("write token field: %w", err)
	}
	if err := w.WriteField("user", n.userKey); err != nil {
		return fmt.Errorf("write user field: %w", err)
	}
	if err := w.WriteField("title", title); err != nil {
		return fmt.Errorf("write title field: %w", err)
	}
	if err := w.WriteField("message", message); err != nil {
		return fmt.Errorf("write message field: %w", err)
	}

	if len(attachment) > 0 {
		fw, err := w.CreateFormFile("attachment", "image.jpg")
		if err != nil {
			return fmt.Errorf("create attachment: %w", err)
		}
		if _, err := io.Copy(fw, bytes.NewReader(attachment)); err != nil {
			return fmt.Errorf("copy attachment: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, &body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := n.http.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("notification rejected with status %s", resp.Status)
	}
	return nil
}
