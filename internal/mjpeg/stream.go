// Package mjpeg streams framebuffer contents as multipart/x-mixed-replace
// HTTP responses, the wire format browsers render as a live image.
package mjpeg

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/chandlerburket/security-camera/internal/framebuffer"
)

const (
	boundary          = "frame"
	keepaliveInterval = 2 * time.Second
)

// Options bound the stream's pacing and its behavior before the first frame.
type Options struct {
	// MaxFPS caps the part rate; 0 streams unpaced.
	MaxFPS int

	// Placeholder opens the stream when no usable frame is buffered yet.
	Placeholder []byte

	// StaleAfter treats a buffered frame older than this as unusable for
	// the opening part; 0 disables the check.
	StaleAfter time.Duration
}

// Stream writes multipart JPEG parts from frames until the client goes away
// or the buffer closes. Transport failures end the stream silently; the
// client has already left.
func Stream(w http.ResponseWriter, r *http.Request, frames *framebuffer.Buffer, opts Options) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+boundary)
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	writePart := func(jpeg []byte) bool {
		if _, err := io.WriteString(w, "--"+boundary+"\r\n"); err != nil {
			return false
		}
		if _, err := io.WriteString(w, "Content-Type: image/jpeg\r\n"); err != nil {
			return false
		}
		if _, err := fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(jpeg)); err != nil {
			return false
		}
		if _, err := w.Write(jpeg); err != nil {
			return false
		}
		if _, err := io.WriteString(w, "\r\n"); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	// A viewer connecting mid-stream starts from the current generation and
	// only ever observes frames published after that. The opening part is
	// the current frame when it is still fresh, the placeholder otherwise.
	lastSeq := frames.Seq()
	current := opts.Placeholder
	if frame, ok := frames.Latest(); ok {
		if opts.StaleAfter <= 0 || time.Since(frame.Timestamp) < opts.StaleAfter {
			current = frame.Data
		}
	}

	var lastWrite time.Time
	if len(current) > 0 {
		if !writePart(current) {
			return
		}
		lastWrite = time.Now()
	}

	// The pump parks in AwaitNext and forwards publishes, keeping the select
	// below responsive to disconnects and keepalive ticks. It is released by
	// the next frame, a buffer close, or the request context.
	ctx := r.Context()
	updates := make(chan framebuffer.Frame)
	go func() {
		defer close(updates)
		seq := lastSeq
		for {
			frame, next, ok := frames.AwaitNext(seq)
			if !ok {
				return
			}
			seq = next
			select {
			case updates <- frame:
			case <-ctx.Done():
				return
			}
		}
	}()

	var minInterval time.Duration
	if opts.MaxFPS > 0 {
		minInterval = time.Second / time.Duration(opts.MaxFPS)
	}

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-updates:
			if !ok {
				return
			}
			current = frame.Data
			// Frames arriving faster than the cap are skipped; the newest
			// one goes out on the next on-time update or keepalive tick.
			if minInterval > 0 && time.Since(lastWrite) < minInterval {
				continue
			}
			if !writePart(current) {
				return
			}
			lastWrite = time.Now()
		case <-keepalive.C:
			if len(current) == 0 || time.Since(lastWrite) < keepaliveInterval {
				continue
			}
			if !writePart(current) {
				return
			}
			lastWrite = time.Now()
		}
	}
}
