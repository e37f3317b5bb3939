package api

func (s *Server) setupRoutes() {
	// Operator surface
	s.router.GET("/", s.uiHandler.Index)
	s.router.GET("/health", s.healthHandler.HealthCheck)
	s.router.GET("/video_feed", s.videoHandler.VideoFeed)
	s.router.GET("/status", s.videoHandler.GetCameraStatus)
	s.router.GET("/cameras", s.videoHandler.ListCameras)
	s.router.POST("/start-recording", s.videoHandler.StartRecording)
	s.router.POST("/stop-recording", s.videoHandler.StopRecording)

	// Door sensor integration
	s.router.POST("/webhook", s.systemHandler.DoorWebhook)
	s.router.GET("/door-status", s.systemHandler.DoorStatus)

	// Camera node surface
	camera := s.router.Group("/api/camera")
	{
		camera.POST("/frame", s.cameraHandler.ReceiveFrame)
		camera.POST("/motion-image", s.cameraHandler.ReceiveMotionImage)
		camera.POST("/video", s.cameraHandler.ReceiveVideo)
		camera.POST("/status", s.cameraHandler.ReceiveStatus)
	}

	system := s.router.Group("/system")
	{
		system.GET("/stats", s.systemHandler.GetStats)
	}
}
