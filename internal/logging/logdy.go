package logging

import (
	"fmt"
	"io"
	"strconv"

	"github.com/logdyhq/logdy-core/logdy"
)

type logdyWriter struct {
	logger logdy.Logdy
}

func (w *logdyWriter) Write(p []byte) (n int, err error) {
	// Forward raw line to Logdy UI
	w.logger.LogString(string(p))
	return len(p), nil
}

// StartLogdy starts embedded Logdy web UI and returns a writer to tee logs, plus the UI URL
func StartLogdy(host string, port int) (io.Writer, string, error) {
	portStr := strconv.Itoa(port)
	ld := logdy.InitializeLogdy(logdy.Config{
		ServerIp:   host,
		ServerPort: portStr,
	}, nil)

	url := fmt.Sprintf("http://%s:%s", host, portStr)
	return &logdyWriter{logger: ld}, url, nil
}
