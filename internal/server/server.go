package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"codelens/internal/models"
	"codelens/internal/scheduler"
	"codelens/internal/sources"
)

const version = "2.0.0"

// Pipeline is the ingestion/info surface the API needs.
type Pipeline interface {
	InitCollection(ctx context.Context) error
	AddDocument(ctx context.Context, text string, metadata map[string]string) (int, error)
	Info(ctx context.Context) models.CollectionInfo
}

// Generator answers RAG queries.
type Generator interface {
	Answer(ctx context.Context, query string, topK int) models.Answer
}

// Updater scrapes URLs into the knowledge base.
type Updater interface {
	UpdateFromURLs(ctx context.Context, urls []string) models.UpdateSummary
	UpdateSingleURL(ctx context.Context, url string) models.UpdateSummary
}

// FileLoader ingests uploaded document files.
type FileLoader interface {
	LoadFile(ctx context.Context, path string) models.LoadResult
}

// Schedule is the scheduler control surface.
type Schedule interface {
	Status() scheduler.Status
	Pause()
	Resume()
	TriggerNow()
}

// Dependencies holds everything the handlers call into.
type Dependencies struct {
	Pipeline  Pipeline
	Generator Generator
	Updater   Updater
	Loader    FileLoader
	Scheduler Schedule
	Sources   sources.Sources
}

// Server is the CodeLens HTTP API.
type Server struct {
	router *gin.Engine
	server *http.Server
	deps   *Dependencies
}

func New(addr string, deps *Dependencies) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		router: gin.New(),
		deps:   deps,
	}

	s.router.Use(gin.Recovery())
	s.router.Use(requestLogger())
	s.router.Use(corsMiddleware())

	s.registerRoutes()

	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
	return s
}

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	log.Info().Str("addr", s.server.Addr).Msg("CodeLens API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request")
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
