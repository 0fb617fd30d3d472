package chromemdb

import (
	"context"
	"math"
	"strings"
	"testing"

	"pdf-chat/internal/models"
)

var vocab = []string{"apple", "banana", "carrot", "dragonfruit"}

// stubEmbedder maps text to a normalized bag-of-words vector over a tiny
// vocabulary, so similarity ranking is deterministic without a model.
type stubEmbedder struct{}

func embedText(text string) []float32 {
	vec := make([]float32, len(vocab)+1)
	lower := strings.ToLower(text)
	for i, w := range vocab {
		vec[i] = float32(strings.Count(lower, w))
	}
	vec[len(vocab)] = 0.1 // keep out-of-vocab text from embedding to zero

	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}

func (stubEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = embedText(t)
	}
	return out, nil
}

func (stubEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return embedText(text), nil
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemoryStore("test", stubEmbedder{})
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	return s
}

func testChunks() []models.ChunkDocument {
	return []models.ChunkDocument{
		{Text: "[PAGE 1]\napple apple apple pie", PageNumber: 1, SourceFilename: "doc.pdf", ChunkIndex: 0},
		{Text: "[PAGE 2]\nbanana bread with extra banana", PageNumber: 2, SourceFilename: "doc.pdf", IsOCR: true, ChunkIndex: 1},
		{Text: "[PAGE 3]\ncarrot cake", PageNumber: 3, SourceFilename: "doc.pdf", ChunkIndex: 2},
	}
}

func TestAddAssignsUniqueIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ids, err := s.Add(ctx, testChunks())
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 ids, got %d", len(ids))
	}
	seen := map[string]bool{}
	for _, id := range ids {
		if id == "" || seen[id] {
			t.Errorf("ids must be unique and non-empty, got %v", ids)
		}
		seen[id] = true
	}
}

func TestQueryRanksBySimilarity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ids, err := s.Add(ctx, testChunks())
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	results, err := s.Query(ctx, "apple", 2)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if !strings.Contains(results[0].Chunk.Text, "apple") {
		t.Errorf("most similar chunk should contain 'apple', got %q", results[0].Chunk.Text)
	}
	if results[0].Score < results[1].Score {
		t.Errorf("results not in descending score order: %f < %f", results[0].Score, results[1].Score)
	}

	known := map[string]bool{}
	for _, id := range ids {
		known[id] = true
	}
	for _, r := range results {
		if !known[r.Chunk.ID] {
			t.Errorf("result id %s was never added", r.Chunk.ID)
		}
	}

	// Provenance survives the metadata roundtrip.
	best := results[0].Chunk
	if best.PageNumber != 1 || best.IsOCR || best.ChunkIndex != 0 || best.SourceFilename != "doc.pdf" {
		t.Errorf("metadata lost on roundtrip: %+v", best)
	}
}

func TestQueryClampsKToCollectionSize(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Add(ctx, testChunks()); err != nil {
		t.Fatalf("Add: %v", err)
	}
	results, err := s.Query(ctx, "banana", 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected all 3 chunks, got %d", len(results))
	}
}

func TestQueryRejectsNonPositiveK(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Query(context.Background(), "apple", 0); err == nil {
		t.Fatal("expected error for k=0")
	}
}

func TestResetClearsIndex(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Add(ctx, testChunks()); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	results, err := s.Query(ctx, "apple", 5)
	if err != nil {
		t.Fatalf("Query after reset: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty index after reset, got %d results", len(results))
	}

	// The store remains usable for the next run.
	if _, err := s.Add(ctx, testChunks()); err != nil {
		t.Fatalf("Add after reset: %v", err)
	}
}

func TestAddDuplicatesAreKept(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Add(ctx, testChunks()); err != nil {
		t.Fatalf("first Add: %v", err)
	}
	if _, err := s.Add(ctx, testChunks()); err != nil {
		t.Fatalf("second Add: %v", err)
	}
	results, err := s.Query(ctx, "carrot", 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 6 {
		t.Fatalf("duplicate content should be kept within a run, got %d results", len(results))
	}
}

func TestAddEmpty(t *testing.T) {
	s := newTestStore(t)
	ids, err := s.Add(context.Background(), nil)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no ids, got %v", ids)
	}
}
