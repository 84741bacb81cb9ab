package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"codelens/internal/models"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Ingester is the slice of the retrieval pipeline the scraper feeds.
type Ingester interface {
	InitCollection(ctx context.Context) error
	AddDocument(ctx context.Context, text string, metadata map[string]string) (int, error)
}

// PageData is the extraction result for one URL. A fetch or parse failure
// leaves Text empty and carries the error instead of raising it.
type PageData struct {
	URL   string
	Title string
	Text  string
	Err   error
}

// Scraper fetches pages and routes their text through the pipeline.
type Scraper struct {
	client     *http.Client
	pipeline   Ingester
	batchDelay time.Duration
}

func NewScraper(pipeline Ingester, timeout time.Duration, batchDelay time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if batchDelay <= 0 {
		batchDelay = time.Second
	}
	return &Scraper{
		client:     &http.Client{Timeout: timeout},
		pipeline:   pipeline,
		batchDelay: batchDelay,
	}
}

// FetchPage downloads one URL and extracts its readable text: script, style
// and chrome elements are stripped, text is pulled from paragraph, code and
// list elements (short fragments dropped), and whitespace runs collapse to
// single spaces. Falls back to whole-page text if nothing qualifies.
func (s *Scraper) FetchPage(ctx context.Context, url string) PageData {
	log.Info().Str("url", url).Msg("Fetching page")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return PageData{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		log.Error().Err(err).Str("url", url).Msg("Error fetching page")
		return PageData{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
		log.Error().Err(err).Msg("Error fetching page")
		return PageData{URL: url, Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		log.Error().Err(err).Str("url", url).Msg("Error parsing page")
		return PageData{URL: url, Err: err}
	}

	doc.Find("script, style, nav, footer, header").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = url
	}

	var parts []string
	doc.Find("p, pre, code, li").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if len(text) > models.MinSnippetLen {
			parts = append(parts, text)
		}
	})
	if len(parts) == 0 {
		parts = []string{doc.Text()}
	}

	fullText := strings.Join(strings.Fields(strings.Join(parts, "\n\n")), " ")

	log.Info().Str("url", url).Int("chars", len(fullText)).Msg("Fetched page")
	return PageData{URL: url, Title: title, Text: fullText}
}

// UpdateFromURLs scrapes the URLs sequentially, feeding each successful fetch
// through the pipeline with source/title/type metadata. A delay between
// requests keeps the load on target sites polite. Per-URL failures never
// abort the batch.
func (s *Scraper) UpdateFromURLs(ctx context.Context, urls []string) models.UpdateSummary {
	if err := s.pipeline.InitCollection(ctx); err != nil {
		log.Error().Err(err).Msg("Error initializing collection before update")
	}

	summary := models.UpdateSummary{TotalURLs: len(urls)}

	for i, url := range urls {
		log.Info().Int("current", i+1).Int("total", len(urls)).Str("url", url).Msg("Processing URL")

		page := s.FetchPage(ctx, url)

		switch {
		case page.Err == nil && len(page.Text) > models.MinDocumentTextLen:
			chunks, err := s.pipeline.AddDocument(ctx, page.Text, map[string]string{
				models.PayloadKeySource: url,
				models.PayloadKeyTitle:  page.Title,
				models.PayloadKeyType:   "web_page",
			})
			if err != nil {
				log.Error().Err(err).Str("url", url).Msg("Error adding page to store")
				summary.Failed++
				summary.Details = append(summary.Details, models.UpdateDetail{
					URL:    url,
					Status: models.UpdateStatusFailed,
					Error:  err.Error(),
				})
				break
			}
			summary.Successful++
			summary.TotalChunks += chunks
			summary.Details = append(summary.Details, models.UpdateDetail{
				URL:    url,
				Status: models.UpdateStatusSuccess,
				Chunks: chunks,
			})
		case page.Err != nil:
			summary.Failed++
			summary.Details = append(summary.Details, models.UpdateDetail{
				URL:    url,
				Status: models.UpdateStatusFailed,
				Error:  page.Err.Error(),
			})
		default:
			log.Warn().Str("url", url).Msg("Skipped URL, insufficient content")
			summary.Failed++
			summary.Details = append(summary.Details, models.UpdateDetail{
				URL:    url,
				Status: models.UpdateStatusSkipped,
				Reason: "insufficient_content",
			})
		}

		if i < len(urls)-1 {
			select {
			case <-time.After(s.batchDelay):
			case <-ctx.Done():
				return summary
			}
		}
	}

	log.Info().
		Int("total", summary.TotalURLs).
		Int("successful", summary.Successful).
		Int("failed", summary.Failed).
		Int("chunks", summary.TotalChunks).
		Msg("Update summary")
	return summary
}

// UpdateSingleURL scrapes one URL synchronously.
func (s *Scraper) UpdateSingleURL(ctx context.Context, url string) models.UpdateSummary {
	return s.UpdateFromURLs(ctx, []string{url})
}
