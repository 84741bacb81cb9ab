package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"codelens/internal/models"
)

// Ingester is the slice of the retrieval pipeline the loader feeds.
type Ingester interface {
	InitCollection(ctx context.Context) error
	AddDocument(ctx context.Context, text string, metadata map[string]string) (int, error)
}

// Loader ingests local document files into the knowledge base.
type Loader struct {
	pipeline Ingester
}

func NewLoader(pipeline Ingester) *Loader {
	return &Loader{pipeline: pipeline}
}

// LoadPDF extracts a PDF page by page and ingests the combined text. A
// document whose extracted text is under the minimum length is rejected
// whole, with no ingestion.
func (l *Loader) LoadPDF(ctx context.Context, filePath string) models.LoadResult {
	if err := l.pipeline.InitCollection(ctx); err != nil {
		return models.LoadResult{Status: models.LoadStatusFailed, Error: err.Error()}
	}

	if _, err := os.Stat(filePath); err != nil {
		return models.LoadResult{
			Status: models.LoadStatusFailed,
			Error:  fmt.Sprintf("File not found: %s", filePath),
		}
	}

	log.Info().Str("file", filePath).Msg("Loading PDF")

	text, pages, err := extractPDF(filePath)
	if err != nil {
		log.Error().Err(err).Str("file", filePath).Msg("Error reading PDF")
		return models.LoadResult{Status: models.LoadStatusFailed, Error: err.Error()}
	}

	if len(text) < models.MinDocumentTextLen {
		return models.LoadResult{
			Status: models.LoadStatusFailed,
			Error:  "Insufficient text extracted from PDF",
		}
	}

	chunks, err := l.pipeline.AddDocument(ctx, text, map[string]string{
		models.PayloadKeySource: filepath.Base(filePath),
		models.PayloadKeyType:   "pdf",
		"pages":                 strconv.Itoa(pages),
		"file_path":             filePath,
	})
	if err != nil {
		log.Error().Err(err).Str("file", filePath).Msg("Error adding PDF to store")
		return models.LoadResult{Status: models.LoadStatusFailed, Error: err.Error()}
	}

	log.Info().Int("chunks", chunks).Str("file", filePath).Msg("Added PDF")
	return models.LoadResult{
		Status:      models.LoadStatusSuccess,
		File:        filePath,
		Pages:       pages,
		ChunksAdded: chunks,
		TextLength:  len(text),
	}
}

// LoadFile ingests any supported document format. PDFs take the page-aware
// path; other formats get a type tag derived from the extension.
func (l *Loader) LoadFile(ctx context.Context, filePath string) models.LoadResult {
	ext := strings.ToLower(filepath.Ext(filePath))
	if ext == ".pdf" {
		return l.LoadPDF(ctx, filePath)
	}

	if err := l.pipeline.InitCollection(ctx); err != nil {
		return models.LoadResult{Status: models.LoadStatusFailed, Error: err.Error()}
	}

	text, err := ExtractFile(filePath)
	if err != nil {
		log.Error().Err(err).Str("file", filePath).Msg("Error extracting file")
		return models.LoadResult{Status: models.LoadStatusFailed, Error: err.Error()}
	}

	if len(text) < models.MinDocumentTextLen {
		return models.LoadResult{
			Status: models.LoadStatusFailed,
			Error:  "Insufficient text extracted from file",
		}
	}

	chunks, err := l.pipeline.AddDocument(ctx, text, map[string]string{
		models.PayloadKeySource: filepath.Base(filePath),
		models.PayloadKeyType:   strings.TrimPrefix(ext, "."),
		"file_path":             filePath,
	})
	if err != nil {
		return models.LoadResult{Status: models.LoadStatusFailed, Error: err.Error()}
	}

	return models.LoadResult{
		Status:      models.LoadStatusSuccess,
		File:        filePath,
		ChunksAdded: chunks,
		TextLength:  len(text),
	}
}

// LoadDirectory ingests every .pdf file in a directory and aggregates the
// per-file results.
func (l *Loader) LoadDirectory(ctx context.Context, dir string) models.LoadSummary {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return models.LoadSummary{
			Details: []models.LoadResult{{
				Status: models.LoadStatusFailed,
				Error:  fmt.Sprintf("Directory not found: %s", dir),
			}},
		}
	}

	var pdfs []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".pdf") {
			pdfs = append(pdfs, filepath.Join(dir, e.Name()))
		}
	}

	summary := models.LoadSummary{TotalFiles: len(pdfs)}
	if len(pdfs) == 0 {
		summary.Details = []models.LoadResult{{
			Status: models.LoadStatusFailed,
			Error:  fmt.Sprintf("No PDF files found in %s", dir),
		}}
		return summary
	}

	for _, path := range pdfs {
		result := l.LoadPDF(ctx, path)
		if result.Status == models.LoadStatusSuccess {
			summary.Successful++
			summary.TotalChunks += result.ChunksAdded
		} else {
			summary.Failed++
		}
		summary.Details = append(summary.Details, result)
	}
	return summary
}
