package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/chandlerburket/security-camera/docs"
)

func (s *Server) setupSwagger() {
	docs.SwaggerInfo.Version = s.config.Version
	docs.SwaggerInfo.Host = fmt.Sprintf("%s:%d", s.config.SwaggerHost, s.config.SwaggerPort)

	s.router.GET("/api/info", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"title":       "Security Camera API",
			"version":     s.config.Version,
			"description": "Aggregator API for camera nodes, live MJPEG streaming and recording control",
			"swagger_ui":  "/docs/index.html",
			"endpoints": gin.H{
				"live_view":   "/",
				"health":      "/health",
				"video_feed":  "/video_feed",
				"status":      "/status",
				"cameras":     "/cameras",
				"recording":   "/start-recording, /stop-recording",
				"door_sensor": "/webhook, /door-status",
				"ingest":      "/api/camera",
				"system":      "/system",
			},
			"port": s.config.Port,
		})
	})

	s.router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	s.router.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/docs/index.html")
	})
}
