package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"pdf-chat/internal/config"
	"pdf-chat/internal/helper"
	"pdf-chat/internal/models"
)

const defaultVectorSize = 768

// Document is one indexed chunk row. The embedding column type is not in the
// tag because its dimension comes from store.vector_size; Reset builds the
// table DDL with the configured dimension.
type Document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	ID             string    `bun:"id,pk"`
	Content        string    `bun:"content,notnull"`
	Embedding      []float32 `bun:"embedding,notnull"`
	SourceFilename string    `bun:"source_filename"`
	PageNumber     int       `bun:"page_number"`
	IsOCR          bool      `bun:"is_ocr"`
	ChunkIndex     int       `bun:"chunk_index"`
	Score          float64   `bun:"score,scanonly"`
}

func ConnectDB(cfg *config.StoreConfig) (*sql.DB, error) {
	dsn := cfg.DSN + "?sslmode=disable"
	return sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn), pgdriver.WithPassword(cfg.Password))), nil
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

// Store is a Postgres/pgvector backed vector index. vectorSize is the
// dimension of the embedding column and must match the embedding model.
type Store struct {
	db         *bun.DB
	embedder   embeddings.Embedder
	vectorSize int
}

func NewStore(db *bun.DB, embedder embeddings.Embedder, vectorSize int) *Store {
	if vectorSize <= 0 {
		vectorSize = defaultVectorSize
	}
	return &Store{db: db, embedder: embedder, vectorSize: vectorSize}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Reset drops and recreates the documents table; the index is rebuilt from
// scratch on every ingestion run.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.NewDropTable().Model((*Document)(nil)).IfExists().Exec(ctx); err != nil {
		return fmt.Errorf("%w: failed to drop documents table: %v", models.ErrIndexUnavailable, err)
	}
	if _, err := s.db.ExecContext(ctx, createTableDDL(s.vectorSize)); err != nil {
		return fmt.Errorf("%w: failed to create documents table: %v", models.ErrIndexUnavailable, err)
	}
	return nil
}

func createTableDDL(vectorSize int) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS documents (
	id varchar PRIMARY KEY,
	content text NOT NULL,
	embedding vector(%d) NOT NULL,
	source_filename varchar,
	page_number bigint,
	is_ocr boolean,
	chunk_index bigint
)`, vectorSize)
}

// Add embeds and inserts the chunks in one batch, assigning fresh random
// ids. No deduplication: re-adding the same content duplicates it.
func (s *Store) Add(ctx context.Context, chunks []models.ChunkDocument) ([]string, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	ids := make([]string, len(chunks))
	docs := make([]Document, len(chunks))
	for i, chunk := range chunks {
		id, err := helper.GenerateUUID()
		if err != nil {
			return nil, err
		}
		embedding, err := s.embedder.EmbedQuery(ctx, chunk.Text)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to embed chunk %d: %v", models.ErrIndexUnavailable, chunk.ChunkIndex, err)
		}
		ids[i] = id
		docs[i] = Document{
			ID:             id,
			Content:        chunk.Text,
			Embedding:      embedding,
			SourceFilename: chunk.SourceFilename,
			PageNumber:     chunk.PageNumber,
			IsOCR:          chunk.IsOCR,
			ChunkIndex:     chunk.ChunkIndex,
		}
	}

	if _, err := s.db.NewInsert().Model(&docs).Exec(ctx); err != nil {
		return nil, fmt.Errorf("%w: failed to store documents: %v", models.ErrIndexUnavailable, err)
	}
	return ids, nil
}

// Query returns at most k chunks ordered by descending cosine similarity
// (1 - cosine distance, matching the chromem backend's score semantics).
func (s *Store) Query(ctx context.Context, text string, k int) ([]models.ScoredChunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	queryEmbedding, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to embed query: %v", models.ErrIndexUnavailable, err)
	}

	var docs []Document
	err = s.db.NewSelect().
		Model(&docs).
		Column("id", "content", "source_filename", "page_number", "is_ocr", "chunk_index").
		ColumnExpr("1 - (embedding <=> ?) AS score", queryEmbedding).
		OrderExpr("embedding <=> ?", queryEmbedding).
		Limit(k).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to search documents: %v", models.ErrIndexUnavailable, err)
	}

	scored := make([]models.ScoredChunk, 0, len(docs))
	for _, doc := range docs {
		scored = append(scored, models.ScoredChunk{
			Chunk: models.ChunkDocument{
				ID:             doc.ID,
				Text:           doc.Content,
				SourceFilename: doc.SourceFilename,
				PageNumber:     doc.PageNumber,
				IsOCR:          doc.IsOCR,
				ChunkIndex:     doc.ChunkIndex,
			},
			Score: doc.Score,
		})
	}
	return scored, nil
}
