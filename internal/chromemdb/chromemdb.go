package chromemdb

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"pdf-chat/internal/helper"
	"pdf-chat/internal/models"
)

const compress = false

// Store is a chromem-go backed vector index. The same embedder instance
// serves Add and Query so similarity scores are meaningful.
type Store struct {
	db             *chromem.DB
	collection     *chromem.Collection
	embedder       embeddings.Embedder
	dbPath         string
	collectionName string
	inMemory       bool
}

// NewStore opens (or creates) a persistent chromem database at dbPath.
func NewStore(dbPath, collectionName string, embedder embeddings.Embedder) (*Store, error) {
	db, err := chromem.NewPersistentDB(dbPath, compress)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", models.ErrIndexUnavailable, err)
	}
	s := &Store{
		db:             db,
		embedder:       embedder,
		dbPath:         dbPath,
		collectionName: collectionName,
	}
	if err := s.ensureCollection(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewMemoryStore creates a non-persistent store.
func NewMemoryStore(collectionName string, embedder embeddings.Embedder) (*Store, error) {
	s := &Store{
		db:             chromem.NewDB(),
		embedder:       embedder,
		collectionName: collectionName,
		inMemory:       true,
	}
	if err := s.ensureCollection(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) embeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return s.embedder.EmbedQuery(ctx, text)
	}
}

func (s *Store) ensureCollection() error {
	c, err := s.db.GetOrCreateCollection(s.collectionName, nil, s.embeddingFunc())
	if err != nil {
		return fmt.Errorf("%w: failed to create/get collection: %v", models.ErrIndexUnavailable, err)
	}
	s.collection = c
	return nil
}

// Reset discards all persisted index data and recreates an empty
// collection. Every ingestion run starts here; the index is never
// cumulative across runs.
func (s *Store) Reset(ctx context.Context) error {
	if s.inMemory {
		if err := s.db.DeleteCollection(s.collectionName); err != nil {
			return fmt.Errorf("%w: failed to delete collection: %v", models.ErrIndexUnavailable, err)
		}
		return s.ensureCollection()
	}

	if err := os.RemoveAll(s.dbPath); err != nil {
		return fmt.Errorf("%w: failed to clear database directory: %v", models.ErrIndexUnavailable, err)
	}
	db, err := chromem.NewPersistentDB(s.dbPath, compress)
	if err != nil {
		return fmt.Errorf("%w: failed to recreate database: %v", models.ErrIndexUnavailable, err)
	}
	s.db = db
	return s.ensureCollection()
}

// Add embeds and inserts the chunks, assigning each a fresh random id.
// Re-adding the same content yields duplicates; only Reset clears the store.
func (s *Store) Add(ctx context.Context, chunks []models.ChunkDocument) ([]string, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	ids := make([]string, len(chunks))
	docs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		id, err := helper.GenerateUUID()
		if err != nil {
			return nil, err
		}
		ids[i] = id
		docs[i] = chromem.Document{
			ID:      id,
			Content: chunk.Text,
			Metadata: map[string]string{
				"source":      chunk.SourceFilename,
				"page":        strconv.Itoa(chunk.PageNumber),
				"ocr":         strconv.FormatBool(chunk.IsOCR),
				"chunk_index": strconv.Itoa(chunk.ChunkIndex),
			},
		}
	}

	log.Debug().Int("chunks", len(docs)).Str("collection", s.collectionName).Msg("adding documents to vector index")
	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return nil, fmt.Errorf("%w: failed to add documents: %v", models.ErrIndexUnavailable, err)
	}
	return ids, nil
}

// Query returns at most k chunks by descending cosine similarity. k is
// clamped to the collection size; an empty collection yields no results.
func (s *Store) Query(ctx context.Context, text string, k int) ([]models.ScoredChunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	if count := s.collection.Count(); k > count {
		k = count
	}
	if k == 0 {
		return nil, nil
	}

	results, err := s.collection.Query(ctx, text, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query by similarity: %v", models.ErrIndexUnavailable, err)
	}

	scored := make([]models.ScoredChunk, 0, len(results))
	for _, r := range results {
		chunk := models.ChunkDocument{
			ID:             r.ID,
			Text:           r.Content,
			SourceFilename: r.Metadata["source"],
		}
		chunk.PageNumber, _ = strconv.Atoi(r.Metadata["page"])
		chunk.IsOCR, _ = strconv.ParseBool(r.Metadata["ocr"])
		chunk.ChunkIndex, _ = strconv.Atoi(r.Metadata["chunk_index"])
		scored = append(scored, models.ScoredChunk{Chunk: chunk, Score: float64(r.Similarity)})
	}
	return scored, nil
}
