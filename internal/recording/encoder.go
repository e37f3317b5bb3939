package recording

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// FFmpegEncoder shells out to ffmpeg, feeding JPEG frames through the
// image2pipe demuxer on stdin and reading back a faststart MP4. The process
// runs under a hard timeout and is treated as terminal on failure.
type FFmpegEncoder struct {
	// Path to the ffmpeg binary.
	Path string

	// FrameRate is the playback rate of the sampled frames. Samples taken
	// every 2s play back at 0.5 fps to keep real-time pacing.
	FrameRate float64

	// Timeout bounds the whole encode, pipe feed included.
	Timeout time.Duration
}

// NewFFmpegEncoder fills in defaults for zero fields.
func NewFFmpegEncoder(path string, frameRate float64, timeout time.Duration) *FFmpegEncoder {
	if path == "" {
		path = "ffmpeg"
	}
	if frameRate <= 0 {
		frameRate = 0.5
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &FFmpegEncoder{Path: path, FrameRate: frameRate, Timeout: timeout}
}

// Encode writes the frames to a temporary MP4 and returns its bytes. The
// temporary directory is removed on every exit path.
func (e *FFmpegEncoder) Encode(ctx context.Context, frames [][]byte) ([]byte, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}

	ctx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	dir, err := os.MkdirTemp("", "recording-*")
	if err != nil {
		return nil, fmt.Errorf("create encode dir: %w", err)
	}
	defer os.RemoveAll(dir)

	outPath := filepath.Join(dir, "recording.mp4")

	args := []string{
		"-y",
		"-f", "image2pipe",
		"-framerate", strconv.FormatFloat(e.FrameRate, 'f', -1, 64),
		"-i", "-",
		"-c:v", "libx264",
		"-preset", "ultrafast",
		"-crf", "35",
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		"-loglevel", "warning",
		outPath,
	}

	cmd := exec.CommandContext(ctx, e.Path, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdin pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	writeErr := func() error {
		defer stdin.Close()
		for _, frame := range frames {
			if _, err := stdin.Write(frame); err != nil {
				return err
			}
		}
		return nil
	}()

	if err := cmd.Wait(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("ffmpeg timed out after %s", e.Timeout)
		}
		return nil, fmt.Errorf("ffmpeg failed: %w: %s", err, stderr.String())
	}
	if writeErr != nil {
		return nil, fmt.Errorf("write frames to ffmpeg: %w", writeErr)
	}

	video, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("read encoded video: %w", err)
	}

	log.Debug().
		Int("frames", len(frames)).
		Int("video_bytes", len(video)).
		Msg("Encoded recording")

	return video, nil
}
