package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"

	"codelens/internal/config"
	"codelens/internal/llmservice"
	"codelens/internal/models"
)

// Retriever is the slice of the pipeline the generator needs.
type Retriever interface {
	SearchDocuments(ctx context.Context, query string, topK int) []models.SearchResult
}

// Generator answers questions grounded in retrieved context. It never
// returns an error to its caller: every failure is folded into an
// error-tagged Answer so the HTTP layer always has a payload to serve.
type Generator struct {
	retriever Retriever
	llmConfig *config.LLMConfig
	topK      int
}

func NewGenerator(retriever Retriever, llmConfig *config.LLMConfig, topK int) *Generator {
	if topK <= 0 {
		topK = 3
	}
	return &Generator{retriever: retriever, llmConfig: llmConfig, topK: topK}
}

// Answer retrieves context for the query and asks the LLM to synthesize an
// answer from it. With no retrievable context it returns the fixed
// insufficient-information answer and marks that no context was used.
func (g *Generator) Answer(ctx context.Context, query string, topK int) models.Answer {
	if topK <= 0 {
		topK = g.topK
	}

	results := g.retriever.SearchDocuments(ctx, query, topK)
	if len(results) == 0 {
		return models.Answer{
			Answer:      models.InsufficientContextAnswer,
			Sources:     []models.SourcePreview{},
			ContextUsed: false,
		}
	}

	var contextParts []string
	sources := make([]models.SourcePreview, 0, len(results))
	for i, r := range results {
		contextParts = append(contextParts, fmt.Sprintf("[Source %d]: %s", i+1, r.Text))

		// preview length is in characters so truncation cannot split a rune
		preview := r.Text
		if runes := []rune(preview); len(runes) > 200 {
			preview = string(runes[:200]) + "..."
		}
		sources = append(sources, models.SourcePreview{
			Source:      r.Source,
			Score:       r.Score,
			TextPreview: preview,
		})
	}
	contextBlock := strings.Join(contextParts, "\n\n")

	log.Info().Int("chunks", len(results)).Str("model", g.llmConfig.Model).Msg("Generating answer")

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextContent{Text: models.SystemPrompt}},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: fmt.Sprintf(models.UserPromptTemplate, contextBlock, query)}},
		},
	}

	resp, err := llmservice.GenerateContent(ctx, g.llmConfig, messages,
		llms.WithTemperature(0.7),
		llms.WithMaxTokens(1024),
		llms.WithTopP(1),
	)
	if err != nil {
		log.Error().Err(err).Msg("Error generating answer")
		return models.Answer{
			Answer:      fmt.Sprintf("Error generating answer: %v", err),
			Sources:     []models.SourcePreview{},
			ContextUsed: false,
			Error:       err.Error(),
		}
	}
	if len(resp.Choices) == 0 {
		return models.Answer{
			Answer:      "Error generating answer: empty response from model",
			Sources:     []models.SourcePreview{},
			ContextUsed: false,
			Error:       "empty response from model",
		}
	}

	return models.Answer{
		Answer:      resp.Choices[0].Content,
		Sources:     sources,
		ContextUsed: true,
		Model:       g.llmConfig.Model,
	}
}
