package server

func (s *Server) registerRoutes() {
	s.router.GET("/", s.handleRoot)
	s.router.GET("/health", s.handleHealth)

	s.router.POST("/ask", s.handleAsk)
	s.router.POST("/add_document", s.handleAddDocument)

	s.router.POST("/update_from_urls", s.handleUpdateFromURLs)
	s.router.POST("/update_from_url", s.handleUpdateFromURL)
	s.router.POST("/update_predefined/:source", s.handleUpdatePredefined)
	s.router.GET("/available_sources", s.handleAvailableSources)

	s.router.POST("/upload_pdf", s.handleUploadPDF)

	s.router.GET("/collection_info", s.handleCollectionInfo)

	s.router.GET("/scheduler/status", s.handleSchedulerStatus)
	s.router.POST("/scheduler/trigger_now", s.handleSchedulerTrigger)
	s.router.POST("/scheduler/pause", s.handleSchedulerPause)
	s.router.POST("/scheduler/resume", s.handleSchedulerResume)
}
