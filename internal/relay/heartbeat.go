package relay

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/chandlerburket/security-camera/internal/logging"
	"github.com/chandlerburket/security-camera/internal/models"
	"github.com/chandlerburket/security-camera/internal/motion"
	"github.com/chandlerburket/security-camera/internal/telemetry"
)

// MotionSource provides the detector state for heartbeat reports.
// (*motion.Detector).State satisfies it.
type MotionSource interface {
	State() motion.State
}

// Recorder is the command target for server-issued recording control.
// (*recording.Session) satisfies it.
type Recorder interface {
	Recording() bool
	Start() error
	Stop() error
}

// Heartbeat sends a status report every interval and dispatches at most one
// command from each successful reply. Failed beats are skipped; any pending
// command simply waits in the aggregator mailbox for the next attempt.
type Heartbeat struct {
	client    *Client
	interval  time.Duration
	collector *telemetry.Collector
	motion    MotionSource
	recorder  Recorder
	logger    zerolog.Logger
}

// NewHeartbeat wires the reporter. collector may be nil when telemetry is
// not wanted (tests).
func NewHeartbeat(client *Client, interval time.Duration, collector *telemetry.Collector, motionSrc MotionSource, recorder Recorder) *Heartbeat {
	return &Heartbeat{
		client:    client,
		interval:  interval,
		collector: collector,
		motion:    motionSrc,
		recorder:  recorder,
		logger:    logging.WithCamera(logging.NewServiceLogger("camnode", "relay"), client.cfg.CameraID),
	}
}

// Run loops until the context is cancelled.
func (h *Heartbeat) Run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error().
				Interface("panic", r).
				Msg("Heartbeat panic recovered")
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.logger.Info().
		Dur("interval", h.interval).
		Msg("Heartbeat started")

	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Msg("Heartbeat stopped")
			return
		case <-ticker.C:
			h.beat(ctx)
		}
	}
}

// beat sends one report. Errors are contained here so a dead server never
// kills the loop.
func (h *Heartbeat) beat(ctx context.Context) {
	reply, err := h.client.SendStatus(ctx, h.buildReport())
	if err != nil {
		h.logger.Warn().Err(err).Msg("Status update failed")
		return
	}

	if reply.Command == "" {
		return
	}
	h.dispatch(reply.Command)
}

func (h *Heartbeat) buildReport() models.HeartbeatReport {
	state := h.motion.State()

	report := models.HeartbeatReport{
		CameraID:       h.client.cfg.CameraID,
		MotionDetected: state.Detected,
		LastMotionTime: models.UnixSeconds(state.LastMotionAt),
		Recording:      h.recorder.Recording(),
		CPUTemp:        "Unknown",
		Uptime:         "Unknown",
		WifiQuality:    "Unknown",
	}

	if h.collector != nil {
		snap := h.collector.Collect()
		report.CPUTemp = snap.CPUTemp
		report.Uptime = snap.Uptime
		report.WifiDBm = snap.WifiDBm
		report.WifiQuality = snap.WifiQuality
		report.CPUPercent = snap.CPUPercent
		report.MemoryMB = snap.MemoryMB
	}

	return report
}

// dispatch runs one server command synchronously. "Already recording" and
// "not recording" are expected when commands race the session's own bounds.
func (h *Heartbeat) dispatch(cmd models.Command) {
	h.logger.Info().
		Str("command", cmd.String()).
		Msg("Command received from server")

	var err error
	switch cmd {
	case models.CommandStartRecording:
		err = h.recorder.Start()
	case models.CommandStopRecording:
		err = h.recorder.Stop()
	default:
		h.logger.Warn().
			Str("command", cmd.String()).
			Msg("Unknown command from server")
		return
	}

	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("command", cmd.String()).
			Msg("Command dispatch failed")
	}
}
