package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/chandlerburket/security-camera/internal/api/handlers"
	"github.com/chandlerburket/security-camera/internal/config"
	"github.com/chandlerburket/security-camera/internal/services"
)

type Server struct {
	config *config.Server
	router *gin.Engine
	server *http.Server

	uiHandler     *handlers.UIHandler
	cameraHandler *handlers.CameraHandler
	videoHandler  *handlers.VideoHandler
	systemHandler *handlers.SystemHandler
	healthHandler *handlers.HealthHandler
}

func NewServer(cfg *config.Server, container *services.ServiceContainer) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	return &Server{
		config:        cfg,
		router:        router,
		uiHandler:     handlers.NewUIHandler(),
		cameraHandler: handlers.NewCameraHandler(container.Ingest),
		videoHandler:  handlers.NewVideoHandler(cfg, container.Registry),
		systemHandler: handlers.NewSystemHandler(container.Registry, container.Ingest, container.Events),
		healthHandler: handlers.NewHealthHandler(cfg.Version),
	}
}

func (s *Server) Setup() error {
	s.setupMiddleware()

	s.setupRoutes()

	s.setupSwagger()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Port),
		Handler: s.router,
	}

	return nil
}

func (s *Server) Start() error {
	log.Info().Int("port", s.config.Port).Msg("Starting aggregator API")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Stopping aggregator API")
	return s.server.Shutdown(ctx)
}
