package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"codelens/internal/config"
)

// Embedder converts text into fixed-length vectors. It is constructed once in
// main and injected into the pipeline; there is no hidden global instance.
type Embedder struct {
	impl  *embeddings.EmbedderImpl
	model string
}

// NewEmbedder creates an embedder backed by an OpenAI-compatible embeddings
// endpoint.
func NewEmbedder(llmConfig *config.LLMConfig) (*Embedder, error) {
	llm, err := openai.New(
		openai.WithBaseURL(llmConfig.BaseURL),
		openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
		openai.WithModel(llmConfig.Model),
		openai.WithEmbeddingModel(llmConfig.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding client: %v", err)
	}
	impl, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %v", err)
	}
	log.Debug().Str("model", llmConfig.Model).Str("base_url", llmConfig.BaseURL).Msg("Initialized embedder")
	return &Embedder{impl: impl, model: llmConfig.Model}, nil
}

// NewOllamaEmbedder creates an embedder backed by a local ollama server.
func NewOllamaEmbedder(llmConfig *config.LLMConfig) (*Embedder, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(llmConfig.BaseURL),
		ollama.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ollama client: %v", err)
	}
	impl, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %v", err)
	}
	log.Debug().Str("model", llmConfig.Model).Str("base_url", llmConfig.BaseURL).Msg("Initialized ollama embedder")
	return &Embedder{impl: impl, model: llmConfig.Model}, nil
}

// Model returns the configured embedding model identifier.
func (e *Embedder) Model() string {
	return e.model
}

// EmbedTexts embeds a batch of texts, one vector per text. Nothing is cached;
// every call recomputes.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vectors, err := e.impl.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed %d texts: %v", len(texts), err)
	}
	return vectors, nil
}

// EmbedQuery embeds exactly one input and returns exactly one vector.
func (e *Embedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	vector, err := e.impl.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %v", err)
	}
	return vector, nil
}
