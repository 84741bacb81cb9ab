package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"codelens/internal/config"
	"codelens/internal/models"
)

// PointRow is a stored point in the pgvector-backed collection. The embedding
// column dimension matches the default vector size (all-MiniLM-L6-v2).
type PointRow struct {
	bun.BaseModel `bun:"table:rag_points,alias:p"`
	ID            string            `bun:"id,pk"`
	Content       string            `bun:"content,notnull"`
	Embedding     []float32         `bun:"embedding,notnull,type:vector(384)"`
	Payload       map[string]string `bun:"payload,type:jsonb"`
	Distance      float64           `bun:"distance,scanonly"`
}

// PostgresStore persists points in Postgres with the pgvector extension,
// ordered by the cosine distance operator on search.
type PostgresStore struct {
	db             *bun.DB
	collectionName string
	vectorSize     int
}

func NewPostgresStore(cfg *config.StoreConfig) (*PostgresStore, error) {
	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("postgres backend requires a DSN")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(cfg.PostgresDSN),
		pgdriver.WithPassword(cfg.PostgresKey),
	))
	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	return &PostgresStore{
		db:             db,
		collectionName: cfg.CollectionName,
		vectorSize:     cfg.VectorSize,
	}, nil
}

func (s *PostgresStore) InitCollection(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*PointRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("failed to create points table: %v", err)
	}
	return nil
}

func (s *PostgresStore) Upsert(ctx context.Context, points []models.Point) error {
	if len(points) == 0 {
		return nil
	}

	rows := make([]PointRow, 0, len(points))
	for _, p := range points {
		if len(p.Vector) != s.vectorSize {
			return fmt.Errorf("vector size mismatch: got %d, collection expects %d", len(p.Vector), s.vectorSize)
		}
		rows = append(rows, PointRow{
			ID:        p.ID,
			Content:   p.Text,
			Embedding: p.Vector,
			Payload:   p.Payload,
		})
	}

	if _, err := s.db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("failed to store points: %v", err)
	}
	return nil
}

func (s *PostgresStore) Search(ctx context.Context, vector []float32, topK int) ([]models.SearchResult, error) {
	var rows []PointRow
	err := s.db.NewSelect().
		Model(&rows).
		Column("id", "content", "payload").
		ColumnExpr("embedding <=> ? AS distance", vector).
		OrderExpr("embedding <=> ?", vector).
		Limit(topK).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search points: %v", err)
	}

	results := make([]models.SearchResult, 0, len(rows))
	for _, r := range rows {
		results = append(results, models.SearchResult{
			Text: r.Content,
			// pgvector's <=> is cosine distance
			Score:   float32(1 - r.Distance),
			Payload: r.Payload,
		})
	}
	return results, nil
}

func (s *PostgresStore) Info(ctx context.Context) models.CollectionInfo {
	count, err := s.db.NewSelect().Model((*PointRow)(nil)).Count(ctx)
	if err != nil {
		return models.CollectionInfo{
			Name:   s.collectionName,
			Status: "error",
			Error:  err.Error(),
		}
	}
	return models.CollectionInfo{
		Name:        s.collectionName,
		PointsCount: count,
		Status:      "healthy",
	}
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
