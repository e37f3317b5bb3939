package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Settings is the slice of configuration both processes share for logging.
type Settings struct {
	Level        string
	LogdyEnabled bool
	LogdyHost    string
	LogdyPort    int
}

// Setup configures the global logger: console output, optional Logdy tee
// and the configured level. Returns the Logdy UI URL when enabled.
func Setup(s Settings) string {
	zerolog.TimeFieldFormat = time.RFC3339

	console := zerolog.ConsoleWriter{Out: os.Stderr}

	var url string
	if s.LogdyEnabled {
		tee, logdyURL, err := StartLogdy(s.LogdyHost, s.LogdyPort)
		if err != nil {
			log.Logger = log.Output(console)
			log.Warn().Err(err).Msg("Logdy unavailable, console only")
		} else {
			log.Logger = log.Output(zerolog.MultiLevelWriter(console, tee))
			url = logdyURL
		}
	} else {
		log.Logger = log.Output(console)
	}

	level, err := zerolog.ParseLevel(s.Level)
	if err != nil {
		log.Warn().Str("level", s.Level).Msg("Invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	return url
}

// NewServiceLogger returns a child logger tagged with the process and
// service names so interleaved node and aggregator logs stay attributable.
func NewServiceLogger(process, service string) zerolog.Logger {
	return log.With().Str("process", process).Str("service", service).Logger()
}

func WithCamera(base zerolog.Logger, cameraID string) zerolog.Logger {
	return base.With().Str("camera_id", cameraID).Logger()
}
