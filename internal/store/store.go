package store

import (
	"context"
	"fmt"

	"codelens/internal/config"
	"codelens/internal/models"
)

// VectorStore is the persistence boundary of the retrieval pipeline.
//
// InitCollection is idempotent and safe to call on every startup and before
// every ingestion. Upsert blocks until the store acknowledges the write and
// must reject vectors whose dimensionality differs from the collection's.
// Search returns up to topK results by descending cosine similarity with no
// score threshold. Info never returns an error; failures yield a degraded
// record instead.
type VectorStore interface {
	InitCollection(ctx context.Context) error
	Upsert(ctx context.Context, points []models.Point) error
	Search(ctx context.Context, vector []float32, topK int) ([]models.SearchResult, error)
	Info(ctx context.Context) models.CollectionInfo
}

// New builds the configured store backend. Construction failures are fatal to
// the caller; a process without a store cannot serve.
func New(cfg *config.StoreConfig) (VectorStore, error) {
	switch cfg.Backend {
	case config.StoreChromem, "":
		return NewChromemStore(cfg.Path, cfg.CollectionName, cfg.VectorSize, false)
	case config.StorePostgres:
		return NewPostgresStore(cfg)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Backend)
	}
}
