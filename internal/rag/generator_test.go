package rag

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"codelens/internal/config"
	"codelens/internal/models"
)

type fakeRetriever struct {
	results []models.SearchResult
}

func (f *fakeRetriever) SearchDocuments(ctx context.Context, query string, topK int) []models.SearchResult {
	if topK < len(f.results) {
		return f.results[:topK]
	}
	return f.results
}

// chatCompletionStub mimics an OpenAI-compatible /chat/completions endpoint.
func chatCompletionStub(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			w.Write([]byte(`{"error":{"message":"boom"}}`))
			return
		}
		w.Write([]byte(`{
			"id": "chatcmpl-test",
			"object": "chat.completion",
			"model": "test-model",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "` + content + `"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 1, "completion_tokens": 1, "total_tokens": 2}
		}`))
	}))
}

func TestGeneratorNoContext(t *testing.T) {
	g := NewGenerator(&fakeRetriever{}, &config.LLMConfig{Key: "test-key", Model: "test-model"}, 3)

	answer := g.Answer(context.Background(), "what is this?", 0)
	if answer.ContextUsed {
		t.Error("context_used = true, want false")
	}
	if len(answer.Sources) != 0 {
		t.Errorf("sources = %v, want empty", answer.Sources)
	}
	if answer.Answer != models.InsufficientContextAnswer {
		t.Errorf("answer = %q, want the fixed insufficient-information answer", answer.Answer)
	}
}

func TestGeneratorAnswerWithContext(t *testing.T) {
	srv := chatCompletionStub(t, http.StatusOK, "FastAPI is a Python web framework [Source 1].")
	defer srv.Close()

	long := strings.Repeat("FastAPI detail. ", 20) // > 200 chars, forces preview truncation
	retriever := &fakeRetriever{results: []models.SearchResult{
		{Text: long, Score: 0.92, Source: "FastAPI Documentation"},
		{Text: "Short chunk.", Score: 0.41, Source: "unknown"},
	}}
	cfg := &config.LLMConfig{Key: "test-key", BaseURL: srv.URL, Model: "test-model"}
	g := NewGenerator(retriever, cfg, 3)

	answer := g.Answer(context.Background(), "What is FastAPI?", 2)
	if answer.Error != "" {
		t.Fatalf("unexpected error: %s", answer.Error)
	}
	if !answer.ContextUsed {
		t.Error("context_used = false, want true")
	}
	if answer.Model != "test-model" {
		t.Errorf("model = %q, want test-model", answer.Model)
	}
	if !strings.Contains(answer.Answer, "FastAPI") {
		t.Errorf("answer = %q, want model output", answer.Answer)
	}
	if len(answer.Sources) != 2 {
		t.Fatalf("sources = %d, want 2", len(answer.Sources))
	}
	if answer.Sources[0].Source != "FastAPI Documentation" {
		t.Errorf("source[0] = %q", answer.Sources[0].Source)
	}
	if !strings.HasSuffix(answer.Sources[0].TextPreview, "...") || len(answer.Sources[0].TextPreview) != 203 {
		t.Errorf("preview not truncated to 200 chars: %d", len(answer.Sources[0].TextPreview))
	}
	if answer.Sources[1].TextPreview != "Short chunk." {
		t.Errorf("short preview altered: %q", answer.Sources[1].TextPreview)
	}
}

func TestGeneratorPreviewTruncatesOnRuneBoundary(t *testing.T) {
	srv := chatCompletionStub(t, http.StatusOK, "Answer.")
	defer srv.Close()

	long := strings.Repeat("é", 250)
	retriever := &fakeRetriever{results: []models.SearchResult{
		{Text: long, Score: 0.8, Source: "docs"},
	}}
	cfg := &config.LLMConfig{Key: "test-key", BaseURL: srv.URL, Model: "test-model"}
	g := NewGenerator(retriever, cfg, 3)

	answer := g.Answer(context.Background(), "question", 1)
	if answer.Error != "" {
		t.Fatalf("unexpected error: %s", answer.Error)
	}
	if len(answer.Sources) != 1 {
		t.Fatalf("sources = %d, want 1", len(answer.Sources))
	}
	preview := answer.Sources[0].TextPreview
	if !utf8.ValidString(preview) {
		t.Errorf("preview is not valid UTF-8: %q", preview)
	}
	if !strings.HasSuffix(preview, "...") {
		t.Errorf("preview not truncated: %q", preview)
	}
	if got := utf8.RuneCountInString(strings.TrimSuffix(preview, "...")); got != 200 {
		t.Errorf("preview rune count = %d, want 200", got)
	}
}

func TestGeneratorLLMFailureIsCaught(t *testing.T) {
	srv := chatCompletionStub(t, http.StatusInternalServerError, "")
	defer srv.Close()

	retriever := &fakeRetriever{results: []models.SearchResult{
		{Text: "chunk", Score: 0.9, Source: "docs"},
	}}
	cfg := &config.LLMConfig{Key: "test-key", BaseURL: srv.URL, Model: "test-model"}
	g := NewGenerator(retriever, cfg, 3)

	answer := g.Answer(context.Background(), "question", 1)
	if answer.Error == "" {
		t.Fatal("expected error-tagged answer")
	}
	if answer.ContextUsed {
		t.Error("context_used = true on failure, want false")
	}
	if len(answer.Sources) != 0 {
		t.Errorf("sources = %v, want empty on failure", answer.Sources)
	}
	if !strings.HasPrefix(answer.Answer, "Error generating answer:") {
		t.Errorf("answer = %q", answer.Answer)
	}
}
