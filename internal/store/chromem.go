package store

import (
	"context"
	"fmt"
	"runtime"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"codelens/internal/models"
)

const compress = false

// ChromemStore keeps the collection in an embedded chromem-go database,
// persisted under a directory. chromem ranks by cosine similarity, matching
// the collection metric the pipeline expects.
type ChromemStore struct {
	db             *chromem.DB
	collection     *chromem.Collection
	collectionName string
	vectorSize     int
}

// NewChromemStore opens (or creates) the database at dbPath. With inMemory
// set, nothing is persisted; used by tests.
func NewChromemStore(dbPath, collectionName string, vectorSize int, inMemory bool) (*ChromemStore, error) {
	var db *chromem.DB
	var err error
	if inMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(dbPath, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	}

	return &ChromemStore{
		db:             db,
		collectionName: collectionName,
		vectorSize:     vectorSize,
	}, nil
}

// InitCollection creates the collection if it does not exist yet, otherwise
// it is a no-op.
func (s *ChromemStore) InitCollection(ctx context.Context) error {
	if _, ok := s.db.ListCollections()[s.collectionName]; !ok {
		log.Info().Str("collection", s.collectionName).Msg("Creating collection")
	}
	c, err := s.db.GetOrCreateCollection(s.collectionName, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to create/get collection: %v", err)
	}
	s.collection = c
	return nil
}

// Upsert writes a batch of pre-embedded points and blocks until chromem has
// accepted all of them.
func (s *ChromemStore) Upsert(ctx context.Context, points []models.Point) error {
	if s.collection == nil {
		return fmt.Errorf("collection %s is not initialized", s.collectionName)
	}

	docs := make([]chromem.Document, 0, len(points))
	for _, p := range points {
		if len(p.Vector) != s.vectorSize {
			return fmt.Errorf("vector size mismatch: got %d, collection expects %d", len(p.Vector), s.vectorSize)
		}
		docs = append(docs, chromem.Document{
			ID:        p.ID,
			Content:   p.Text,
			Metadata:  p.Payload,
			Embedding: p.Vector,
		})
	}

	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %v", err)
	}
	return nil
}

// Search returns the topK most similar points. chromem rejects a result count
// above the collection size, so topK is clamped; an empty collection yields
// an empty slice.
func (s *ChromemStore) Search(ctx context.Context, vector []float32, topK int) ([]models.SearchResult, error) {
	if s.collection == nil {
		return nil, fmt.Errorf("collection %s is not initialized", s.collectionName)
	}

	n := topK
	if count := s.collection.Count(); count < n {
		n = count
	}
	if n <= 0 {
		return nil, nil
	}

	found, err := s.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: vector,
		NResults:       n,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %v", err)
	}

	results := make([]models.SearchResult, 0, len(found))
	for _, r := range found {
		results = append(results, models.SearchResult{
			Text:    r.Content,
			Score:   r.Similarity,
			Payload: r.Metadata,
		})
	}
	return results, nil
}

// Info reports the collection size; any failure degrades to an error-status
// record rather than returning an error.
func (s *ChromemStore) Info(ctx context.Context) models.CollectionInfo {
	if s.collection == nil {
		return models.CollectionInfo{
			Name:   s.collectionName,
			Status: "error",
			Error:  "collection not initialized",
		}
	}
	return models.CollectionInfo{
		Name:        s.collectionName,
		PointsCount: s.collection.Count(),
		Status:      "healthy",
	}
}
