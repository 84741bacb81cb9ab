package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type queryRequest struct {
	Query string `json:"query" binding:"required"`
	TopK  int    `json:"top_k"`
}

type documentRequest struct {
	Text   string `json:"text" binding:"required"`
	Source string `json:"source"`
}

type urlUpdateRequest struct {
	URLs []string `json:"urls" binding:"required"`
}

type singleURLRequest struct {
	URL string `json:"url" binding:"required"`
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "CodeLens API is running",
		"status":  "healthy",
		"version": version,
		"features": []string{
			"RAG Question Answering",
			"Web Scraping",
			"PDF Upload",
			"Auto-Updates (Scheduled)",
			"Scheduler Control",
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// handleAsk runs the full RAG path. The generator catches its own failures,
// so the response is always 200-shaped.
func (s *Server) handleAsk(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if req.TopK <= 0 {
		req.TopK = 3
	}

	answer := s.deps.Generator.Answer(c.Request.Context(), req.Query, req.TopK)
	c.JSON(http.StatusOK, answer)
}

func (s *Server) handleAddDocument(c *gin.Context) {
	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if req.Source == "" {
		req.Source = "manual_upload"
	}

	chunks, err := s.deps.Pipeline.AddDocument(c.Request.Context(), req.Text, map[string]string{
		"source": req.Source,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "success",
		"chunks_added": chunks,
		"source":       req.Source,
	})
}

// handleUpdateFromURLs dispatches the batch to the background; the caller
// gets a "started" acknowledgement and must watch collection_info or logs.
func (s *Server) handleUpdateFromURLs(c *gin.Context) {
	var req urlUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	go s.deps.Updater.UpdateFromURLs(context.Background(), req.URLs)

	c.JSON(http.StatusOK, gin.H{
		"status":  "started",
		"message": fmt.Sprintf("Scraping %d URLs in background", len(req.URLs)),
		"urls":    req.URLs,
	})
}

func (s *Server) handleUpdateFromURL(c *gin.Context) {
	var req singleURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	summary := s.deps.Updater.UpdateSingleURL(c.Request.Context(), req.URL)
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleUpdatePredefined(c *gin.Context) {
	name := c.Param("source")
	urls, ok := s.deps.Sources[name]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"detail":    fmt.Sprintf("Source '%s' not found", name),
			"available": s.deps.Sources.Names(),
		})
		return
	}

	go s.deps.Updater.UpdateFromURLs(context.Background(), urls)

	c.JSON(http.StatusOK, gin.H{
		"status":  "started",
		"source":  name,
		"urls":    urls,
		"message": fmt.Sprintf("Updating %s documentation in background", name),
	})
}

func (s *Server) handleAvailableSources(c *gin.Context) {
	details := make(map[string]int, len(s.deps.Sources))
	for name, urls := range s.deps.Sources {
		details[name] = len(urls)
	}
	c.JSON(http.StatusOK, gin.H{
		"sources": s.deps.Sources.Names(),
		"details": details,
	})
}

// handleUploadPDF stores the upload in a temp file, ingests it synchronously
// and cleans up.
func (s *Server) handleUploadPDF(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "file is required"})
		return
	}

	tmp, err := os.CreateTemp("", "upload-*"+filepath.Ext(file.Filename))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	result := s.deps.Loader.LoadFile(c.Request.Context(), tmpPath)
	// report the uploaded name, not the temp path
	if result.File != "" {
		result.File = file.Filename
	}
	log.Info().Str("file", file.Filename).Str("status", result.Status).Msg("Processed upload")
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleCollectionInfo(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.Pipeline.Info(c.Request.Context()))
}

func (s *Server) handleSchedulerStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.Scheduler.Status())
}

func (s *Server) handleSchedulerTrigger(c *gin.Context) {
	s.deps.Scheduler.TriggerNow()
	c.JSON(http.StatusOK, gin.H{
		"status":  "triggered",
		"message": "Manual update started in background",
	})
}

func (s *Server) handleSchedulerPause(c *gin.Context) {
	s.deps.Scheduler.Pause()
	c.JSON(http.StatusOK, gin.H{"status": "paused", "message": "Scheduler paused"})
}

func (s *Server) handleSchedulerResume(c *gin.Context) {
	s.deps.Scheduler.Resume()
	c.JSON(http.StatusOK, gin.H{"status": "resumed", "message": "Scheduler resumed"})
}
