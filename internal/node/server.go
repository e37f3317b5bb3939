package node

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/chandlerburket/security-camera/internal/api/middleware"
	"github.com/chandlerburket/security-camera/internal/config"
	"github.com/chandlerburket/security-camera/internal/helpers"
	"github.com/chandlerburket/security-camera/internal/mjpeg"
	"github.com/chandlerburket/security-camera/internal/models"
)

// previewPage is the node's minimal standalone view, for pointing a browser
// straight at the camera without going through the aggregator.
const previewPage = `<!DOCTYPE html>
<html>
<head>
    <title>Camera Preview</title>
    <style>
        body { background: #1a1a2e; color: #eee; font-family: sans-serif; text-align: center; margin: 0; padding: 20px; }
        img { max-width: 100%; border: 2px solid #444; border-radius: 6px; }
        a { color: #7fb4ff; }
    </style>
</head>
<body>
    <h1>Camera Preview</h1>
    <img src="/video_feed" alt="Live stream">
    <p><a href="/status">status</a> &middot; <a href="/health">health</a></p>
</body>
</html>`

// localServer is the on-node preview and health surface, a small cousin of
// the aggregator API.
type localServer struct {
	cfg         *config.Node
	svc         *Service
	router      *gin.Engine
	server      *http.Server
	placeholder []byte
}

func newLocalServer(cfg *config.Node, svc *Service) *localServer {
	gin.SetMode(gin.ReleaseMode)

	s := &localServer{
		cfg:         cfg,
		svc:         svc,
		router:      gin.New(),
		placeholder: helpers.Placeholder(cfg.CaptureWidth, cfg.CaptureHeight),
	}

	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.RequestContext())
	s.router.Use(middleware.Logger())
	s.router.Use(middleware.Recovery())
	s.router.Use(middleware.CORS())

	s.router.GET("/", s.index)
	s.router.GET("/video_feed", s.videoFeed)
	s.router.GET("/status", s.status)
	s.router.GET("/health", s.health)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: s.router,
	}

	return s
}

// Start serves in the background. A dead preview server is logged but never
// takes the node down; the capture loop and relay keep running.
func (s *localServer) Start() {
	go func() {
		log.Info().Int("port", s.cfg.Port).Msg("Starting preview server")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Int("port", s.cfg.Port).Msg("Preview server failed")
		}
	}()
}

func (s *localServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *localServer) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(previewPage))
}

func (s *localServer) videoFeed(c *gin.Context) {
	log.Debug().Str("client", c.ClientIP()).Msg("Preview viewer connected")
	mjpeg.Stream(c.Writer, c.Request, s.svc.frames, mjpeg.Options{
		MaxFPS:      s.cfg.CaptureFPS,
		Placeholder: s.placeholder,
	})
}

// status reports the same shape the aggregator receives in heartbeats, so
// the two status views stay comparable.
func (s *localServer) status(c *gin.Context) {
	state := s.svc.detector.State()
	snap := s.svc.collector.Collect()

	c.JSON(http.StatusOK, models.HeartbeatReport{
		CameraID:       s.cfg.CameraID,
		MotionDetected: state.Detected,
		LastMotionTime: models.UnixSeconds(state.LastMotionAt),
		Recording:      s.svc.session.Recording(),
		CPUTemp:        snap.CPUTemp,
		Uptime:         snap.Uptime,
		WifiDBm:        snap.WifiDBm,
		WifiQuality:    snap.WifiQuality,
		CPUPercent:     snap.CPUPercent,
		MemoryMB:       snap.MemoryMB,
	})
}

func (s *localServer) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "version": s.cfg.Version})
}
