package index

import (
	"context"

	"pdf-chat/internal/models"
)

// Index is a similarity-searchable store of chunk documents. It is rebuilt
// per ingestion run: Reset discards all persisted data, Add inserts chunks
// without deduplication. Implementations wrap backend failures in
// models.ErrIndexUnavailable.
//
// The index has no internal locking; concurrent Reset/Add against Query must
// be serialized by the caller.
type Index interface {
	// Reset discards any existing index data at the configured location.
	Reset(ctx context.Context) error
	// Add embeds and inserts the chunks, returning their assigned ids in
	// input order. Ids are random per run, never derived from content.
	Add(ctx context.Context, chunks []models.ChunkDocument) ([]string, error)
	// Query returns at most k chunks ordered by descending similarity to
	// the query text. Tie order is store-native and not deterministic.
	Query(ctx context.Context, text string, k int) ([]models.ScoredChunk, error)
}
