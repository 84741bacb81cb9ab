package llmservice

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"codelens/internal/config"
)

// call llm
func GenerateContent(ctx context.Context, llmConfig *config.LLMConfig, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	log.Debug().Str("model", llmConfig.Model).Str("base_url", llmConfig.BaseURL).Msg("Generating content")
	llm, err := openai.New(
		openai.WithBaseURL(llmConfig.BaseURL),
		openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
		openai.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, err
	}

	return llm.GenerateContent(ctx, messages, options...)
}
