package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"codelens/internal/config"
	"codelens/internal/embedding"
	"codelens/internal/helper"
	"codelens/internal/loader"
	"codelens/internal/rag"
	"codelens/internal/scheduler"
	"codelens/internal/scraper"
	"codelens/internal/server"
	"codelens/internal/sources"
	"codelens/internal/store"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	srcs, err := sources.Load(cfg.SourcesFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading predefined sources")
	}

	if cfg.Store.Backend == config.StoreChromem || cfg.Store.Backend == "" {
		if err := helper.CreateFolder(cfg.Store.Path); err != nil {
			log.Fatal().Err(err).Msg("Error creating store folder")
		}
	}

	// a process without a store cannot serve
	vectorStore, err := store.New(&cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating vector store")
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	pipeline := rag.NewPipeline(embedder, vectorStore, &cfg.RAG)

	ctx := context.Background()
	if err := pipeline.InitCollection(ctx); err != nil {
		log.Fatal().Err(err).Msg("Error initializing collection")
	}

	generator := rag.NewGenerator(pipeline, &cfg.LLM, cfg.RAG.AnswerTopK)
	scr := scraper.NewScraper(pipeline,
		time.Duration(cfg.Scraper.TimeoutSeconds)*time.Second,
		time.Duration(cfg.Scraper.BatchDelay*float64(time.Second)))
	ldr := loader.NewLoader(pipeline)

	sched, err := scheduler.New(scr, srcs, cfg.Scheduler.CronSpec)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating scheduler")
	}
	sched.Start()

	srv := server.New(cfg.Server.Addr, &server.Dependencies{
		Pipeline:  pipeline,
		Generator: generator,
		Updater:   scr,
		Loader:    ldr,
		Scheduler: sched,
		Sources:   srcs,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("Server error")
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error shutting down server")
	}
}

func newEmbedder(cfg *config.Config) (*embedding.Embedder, error) {
	if cfg.EmbedLLM.Provider == "ollama" {
		return embedding.NewOllamaEmbedder(&cfg.EmbedLLM)
	}
	return embedding.NewEmbedder(&cfg.EmbedLLM)
}
