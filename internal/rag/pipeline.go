package rag

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"codelens/internal/chunker"
	"codelens/internal/config"
	"codelens/internal/helper"
	"codelens/internal/models"
	"codelens/internal/store"
)

// Embedder is the slice of the embedding adapter the pipeline needs.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
}

// Pipeline composes chunking, embedding and the vector store. Ingestion
// errors propagate to the caller; search errors degrade to empty results so a
// transient store failure never hard-fails a question.
type Pipeline struct {
	embedder Embedder
	store    store.VectorStore
	cfg      *config.RAGConfig
}

func NewPipeline(embedder Embedder, vectorStore store.VectorStore, cfg *config.RAGConfig) *Pipeline {
	return &Pipeline{embedder: embedder, store: vectorStore, cfg: cfg}
}

// AddDocument chunks text, embeds the chunks in batches and upserts each
// batch before moving on to the next. The shared metadata plus a per-chunk
// chunk_index lands in every point's payload. Returns the number of chunks
// submitted.
func (p *Pipeline) AddDocument(ctx context.Context, text string, metadata map[string]string) (int, error) {
	chunks := chunker.ChunkText(text, p.cfg.ChunkSize, p.cfg.ChunkOverlap)
	if len(chunks) == 0 {
		log.Warn().Msg("No chunks generated from text")
		return 0, nil
	}

	batchSize := p.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 10
	}

	log.Info().Int("chunks", len(chunks)).Int("batch_size", batchSize).Msg("Uploading chunks")

	for batchStart := 0; batchStart < len(chunks); batchStart += batchSize {
		batchEnd := min(batchStart+batchSize, len(chunks))
		batch := chunks[batchStart:batchEnd]

		vectors, err := p.embedder.EmbedTexts(ctx, batch)
		if err != nil {
			return 0, fmt.Errorf("failed to embed batch at chunk %d: %v", batchStart, err)
		}
		if len(vectors) != len(batch) {
			return 0, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(batch))
		}

		points := make([]models.Point, 0, len(batch))
		for i, chunk := range batch {
			id, err := helper.GenerateUUID()
			if err != nil {
				return 0, err
			}

			payload := map[string]string{
				models.PayloadKeyText:       chunk,
				models.PayloadKeyChunkIndex: fmt.Sprintf("%d", batchStart+i),
			}
			for k, v := range metadata {
				payload[k] = v
			}

			points = append(points, models.Point{
				ID:      id,
				Vector:  vectors[i],
				Text:    chunk,
				Payload: payload,
			})
		}

		// blocks until the store acknowledges this batch
		if err := p.store.Upsert(ctx, points); err != nil {
			return 0, fmt.Errorf("failed to upsert batch at chunk %d: %v", batchStart, err)
		}
		log.Debug().Int("uploaded", batchEnd).Int("total", len(chunks)).Msg("Batch uploaded")
	}

	log.Info().Int("chunks", len(chunks)).Msg("Added chunks to vector store")
	return len(chunks), nil
}

// SearchDocuments embeds the query once and returns the topK most similar
// chunks. Any internal error yields an empty slice; callers cannot tell "no
// relevant documents" from "search subsystem failure".
func (p *Pipeline) SearchDocuments(ctx context.Context, query string, topK int) []models.SearchResult {
	if topK <= 0 {
		topK = p.cfg.SearchTopK
	}

	queryVector, err := p.embedder.EmbedQuery(ctx, query)
	if err != nil {
		log.Error().Err(err).Msg("Error embedding query")
		return nil
	}

	results, err := p.store.Search(ctx, queryVector, topK)
	if err != nil {
		log.Error().Err(err).Msg("Error searching documents")
		return nil
	}

	for i := range results {
		source := results[i].Payload[models.PayloadKeySource]
		if source == "" {
			source = "unknown"
		}
		results[i].Source = source
	}
	return results
}

// Info surfaces the store's collection health record.
func (p *Pipeline) Info(ctx context.Context) models.CollectionInfo {
	return p.store.Info(ctx)
}

// InitCollection prepares the store; safe to call repeatedly.
func (p *Pipeline) InitCollection(ctx context.Context) error {
	return p.store.InitCollection(ctx)
}
