package models

// PageDocument is the text extracted from a single page of a source
// document. PageNumber is 1-based; 0 means the format has no page notion.
type PageDocument struct {
	Text           string
	PageNumber     int
	SourceFilename string
	IsOCR          bool
}

// ChunkDocument is a bounded slice of page text produced by the splitter.
// When the originating page is known, Text starts with a "[PAGE <n>]" tag so
// the model can cite it. ID is assigned fresh on every ingestion run.
type ChunkDocument struct {
	ID             string
	Text           string
	SourceFilename string
	PageNumber     int
	IsOCR          bool
	ChunkIndex     int
}

// ScoredChunk is a retrieved chunk with its similarity score.
type ScoredChunk struct {
	Chunk ChunkDocument
	Score float64
}
