package splitter

import (
	"fmt"

	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"

	"pdf-chat/internal/models"
)

// PageTagFormat is prepended to a chunk's text when its page is known, so
// the model can cite page numbers verbatim.
const PageTagFormat = "[PAGE %d]\n"

// Splitter cuts page documents into overlapping character chunks, breaking
// on paragraph, then line, then word boundaries where possible.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
}

func New(chunkSize, chunkOverlap int) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap %d must be non-negative and less than chunk size %d", chunkOverlap, chunkSize)
	}
	return &Splitter{chunkSize: chunkSize, chunkOverlap: chunkOverlap}, nil
}

// Split produces the ordered chunk sequence for a document's pages. Each
// chunk inherits source/page/ocr provenance from its originating page; the
// page tag is prepended after the chunk boundaries are fixed. ChunkIndex is
// the 0-based position in the flattened output. An empty page sequence
// yields an empty chunk sequence.
func (s *Splitter) Split(pages []models.PageDocument) ([]models.ChunkDocument, error) {
	if len(pages) == 0 {
		return nil, nil
	}

	docs := make([]schema.Document, 0, len(pages))
	for _, p := range pages {
		docs = append(docs, schema.Document{
			PageContent: p.Text,
			Metadata: map[string]any{
				"source": p.SourceFilename,
				"page":   p.PageNumber,
				"ocr":    p.IsOCR,
			},
		})
	}

	split := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(s.chunkSize),
		textsplitter.WithChunkOverlap(s.chunkOverlap),
	)
	out, err := textsplitter.SplitDocuments(split, docs)
	if err != nil {
		return nil, err
	}

	chunks := make([]models.ChunkDocument, 0, len(out))
	for idx, d := range out {
		chunk := models.ChunkDocument{
			Text:       d.PageContent,
			ChunkIndex: idx,
		}
		if v, ok := d.Metadata["source"].(string); ok {
			chunk.SourceFilename = v
		}
		if v, ok := d.Metadata["page"].(int); ok {
			chunk.PageNumber = v
		}
		if v, ok := d.Metadata["ocr"].(bool); ok {
			chunk.IsOCR = v
		}
		if chunk.PageNumber > 0 {
			chunk.Text = fmt.Sprintf(PageTagFormat, chunk.PageNumber) + chunk.Text
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}
