package models

// Chunk is a bounded segment of a source document, the unit of embedding and storage
type Chunk struct {
	Text  string
	Index int
}

// Point is the persisted unit in the vector store
type Point struct {
	ID      string
	Vector  []float32
	Text    string
	Payload map[string]string
}

// SearchResult is a projection of a stored point returned by a similarity query
type SearchResult struct {
	Text    string            `json:"text"`
	Score   float32           `json:"score"`
	Source  string            `json:"source"`
	Payload map[string]string `json:"metadata"`
}

// SourcePreview is the citation record attached to a generated answer
type SourcePreview struct {
	Source      string  `json:"source"`
	Score       float32 `json:"score"`
	TextPreview string  `json:"text_preview"`
}

// Answer is the result of a RAG query
type Answer struct {
	Answer      string          `json:"answer"`
	Sources     []SourcePreview `json:"sources"`
	ContextUsed bool            `json:"context_used"`
	Model       string          `json:"model,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// UpdateDetail records the outcome for a single URL in a batch update
type UpdateDetail struct {
	URL    string `json:"url"`
	Status string `json:"status"`
	Chunks int    `json:"chunks,omitempty"`
	Error  string `json:"error,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// UpdateSummary aggregates a batch scrape run
type UpdateSummary struct {
	TotalURLs   int            `json:"total_urls"`
	Successful  int            `json:"successful"`
	Failed      int            `json:"failed"`
	TotalChunks int            `json:"total_chunks"`
	Details     []UpdateDetail `json:"details"`
}

// LoadResult is the outcome of ingesting a single file
type LoadResult struct {
	Status      string `json:"status"`
	File        string `json:"file,omitempty"`
	Pages       int    `json:"pages,omitempty"`
	ChunksAdded int    `json:"chunks_added,omitempty"`
	TextLength  int    `json:"text_length,omitempty"`
	Error       string `json:"error,omitempty"`
}

// LoadSummary aggregates a directory batch load
type LoadSummary struct {
	TotalFiles  int          `json:"total_files"`
	Successful  int          `json:"successful"`
	Failed      int          `json:"failed"`
	TotalChunks int          `json:"total_chunks"`
	Details     []LoadResult `json:"details"`
}

// CollectionInfo describes the health and size of the vector collection
type CollectionInfo struct {
	Name        string `json:"name"`
	PointsCount int    `json:"points_count"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
}

const (
	LoadStatusSuccess = "success"
	LoadStatusFailed  = "failed"

	UpdateStatusSuccess = "success"
	UpdateStatusFailed  = "failed"
	UpdateStatusSkipped = "skipped"
)

// Payload keys shared between ingestion and search
const (
	PayloadKeyText       = "text"
	PayloadKeyChunkIndex = "chunk_index"
	PayloadKeySource     = "source"
	PayloadKeyTitle      = "title"
	PayloadKeyType       = "type"
)
