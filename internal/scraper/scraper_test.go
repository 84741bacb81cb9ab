package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"codelens/internal/models"
)

type fakeIngester struct {
	added  []map[string]string
	texts  []string
	addErr error
}

func (f *fakeIngester) InitCollection(ctx context.Context) error { return nil }

func (f *fakeIngester) AddDocument(ctx context.Context, text string, metadata map[string]string) (int, error) {
	if f.addErr != nil {
		return 0, f.addErr
	}
	f.added = append(f.added, metadata)
	f.texts = append(f.texts, text)
	return 2, nil
}

const samplePage = `<html>
<head><title>Test Docs</title></head>
<body>
<nav>Home About Contact and other navigation links</nav>
<header>A big site header banner with lots of text in it</header>
<script>var tracking = "should never appear in extracted text";</script>
<p>FastAPI is a modern, fast web framework for building APIs with Python.</p>
<p>short</p>
<pre>from fastapi import FastAPI
app = FastAPI()</pre>
<li>It is based on standard Python type hints.</li>
<footer>Copyright footer text that should be stripped out</footer>
</body>
</html>`

func TestFetchPageExtraction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != userAgent {
			t.Errorf("user agent = %q", r.Header.Get("User-Agent"))
		}
		w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	s := NewScraper(&fakeIngester{}, 5*time.Second, time.Millisecond)
	page := s.FetchPage(context.Background(), srv.URL)

	if page.Err != nil {
		t.Fatalf("FetchPage: %v", page.Err)
	}
	if page.Title != "Test Docs" {
		t.Errorf("title = %q, want Test Docs", page.Title)
	}
	for _, banned := range []string{"tracking", "navigation", "banner", "Copyright", "short"} {
		if strings.Contains(page.Text, banned) {
			t.Errorf("extracted text contains %q: %q", banned, page.Text)
		}
	}
	for _, wanted := range []string{"FastAPI is a modern", "type hints", "app = FastAPI()"} {
		if !strings.Contains(page.Text, wanted) {
			t.Errorf("extracted text missing %q: %q", wanted, page.Text)
		}
	}
	if strings.Contains(page.Text, "\n") || strings.Contains(page.Text, "  ") {
		t.Errorf("whitespace not collapsed: %q", page.Text)
	}
}

func TestFetchPageWholePageFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>Bare</title></head><body><div>Only a div with content here</div></body></html>`))
	}))
	defer srv.Close()

	s := NewScraper(&fakeIngester{}, 5*time.Second, time.Millisecond)
	page := s.FetchPage(context.Background(), srv.URL)

	if page.Err != nil {
		t.Fatalf("FetchPage: %v", page.Err)
	}
	if !strings.Contains(page.Text, "Only a div with content here") {
		t.Errorf("fallback text missing div content: %q", page.Text)
	}
}

func TestFetchPageHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	s := NewScraper(&fakeIngester{}, 5*time.Second, time.Millisecond)
	page := s.FetchPage(context.Background(), srv.URL)

	if page.Err == nil {
		t.Fatal("expected error for 404")
	}
	if page.Text != "" {
		t.Errorf("text = %q, want empty on error", page.Text)
	}
}

func TestUpdateFromURLs(t *testing.T) {
	longPage := "<html><body><p>" + strings.Repeat("FastAPI documentation content. ", 10) + "</p></body></html>"
	shortPage := "<html><body><p>This page has barely any text in it.</p></body></html>"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/long":
			w.Write([]byte(longPage))
		case "/short":
			w.Write([]byte(shortPage))
		default:
			http.Error(w, "gone", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	ingester := &fakeIngester{}
	s := NewScraper(ingester, 5*time.Second, time.Millisecond)

	summary := s.UpdateFromURLs(context.Background(), []string{
		srv.URL + "/long",
		srv.URL + "/short",
		srv.URL + "/missing",
	})

	if summary.TotalURLs != 3 {
		t.Errorf("total = %d, want 3", summary.TotalURLs)
	}
	if summary.Successful != 1 {
		t.Errorf("successful = %d, want 1", summary.Successful)
	}
	if summary.Failed != 2 {
		t.Errorf("failed = %d, want 2", summary.Failed)
	}
	if summary.TotalChunks != 2 {
		t.Errorf("chunks = %d, want 2", summary.TotalChunks)
	}
	if len(summary.Details) != 3 {
		t.Fatalf("details = %d, want 3", len(summary.Details))
	}
	if summary.Details[0].Status != models.UpdateStatusSuccess {
		t.Errorf("detail[0] = %+v", summary.Details[0])
	}
	if summary.Details[1].Status != models.UpdateStatusSkipped || summary.Details[1].Reason != "insufficient_content" {
		t.Errorf("detail[1] = %+v", summary.Details[1])
	}
	if summary.Details[2].Status != models.UpdateStatusFailed {
		t.Errorf("detail[2] = %+v", summary.Details[2])
	}

	if len(ingester.added) != 1 {
		t.Fatalf("ingested %d documents, want 1", len(ingester.added))
	}
	meta := ingester.added[0]
	if meta[models.PayloadKeySource] != srv.URL+"/long" {
		t.Errorf("source = %q", meta[models.PayloadKeySource])
	}
	if meta[models.PayloadKeyType] != "web_page" {
		t.Errorf("type = %q, want web_page", meta[models.PayloadKeyType])
	}
}

func TestUpdateFromURLsIngestFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>" + strings.Repeat("Plenty of page content here. ", 10) + "</p></body></html>"))
	}))
	defer srv.Close()

	ingester := &fakeIngester{addErr: errors.New("store unreachable")}
	s := NewScraper(ingester, 5*time.Second, time.Millisecond)

	summary := s.UpdateSingleURL(context.Background(), srv.URL)
	if summary.Failed != 1 || summary.Successful != 0 {
		t.Errorf("summary = %+v, want one failure", summary)
	}
	if summary.Details[0].Error == "" {
		t.Error("detail missing error for failed ingestion")
	}
}
