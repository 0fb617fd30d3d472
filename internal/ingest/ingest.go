package ingest

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"pdf-chat/internal/config"
	"pdf-chat/internal/index"
	"pdf-chat/internal/models"
	"pdf-chat/internal/parser"
	"pdf-chat/internal/splitter"
)

// Pipeline ingests one document per invocation: reset index, extract pages,
// split into chunks, add to the index. Entirely synchronous. A failed stage
// abandons the run without rollback, leaving the index in whatever state
// reset plus any partial add produced.
type Pipeline struct {
	splitter *splitter.Splitter
	index    index.Index
	ocr      config.OCRConfig
}

func NewPipeline(split *splitter.Splitter, idx index.Index, ocr config.OCRConfig) *Pipeline {
	return &Pipeline{splitter: split, index: idx, ocr: ocr}
}

func (p *Pipeline) Ingest(ctx context.Context, filePath string) error {
	if !parser.SupportedExtension(filePath) {
		return fmt.Errorf("%w: %s", models.ErrUnsupportedFileType, filepath.Ext(filePath))
	}

	log.Info().Str("file", filePath).Msg("ingesting document")
	if err := p.index.Reset(ctx); err != nil {
		return err
	}

	pages, err := parser.Parse(filePath, p.ocr)
	if err != nil {
		return err
	}
	log.Info().Int("pages", len(pages)).Msg("extracted pages")

	chunks, err := p.splitter.Split(pages)
	if err != nil {
		return err
	}
	log.Info().Int("chunks", len(chunks)).Msg("split into chunks")

	if _, err := p.index.Add(ctx, chunks); err != nil {
		return err
	}
	log.Info().Str("file", filePath).Msg("ingestion complete")
	return nil
}

// DryRun parses and splits without touching the index.
func (p *Pipeline) DryRun(filePath string) ([]models.ChunkDocument, error) {
	if !parser.SupportedExtension(filePath) {
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedFileType, filepath.Ext(filePath))
	}
	pages, err := parser.Parse(filePath, p.ocr)
	if err != nil {
		return nil, err
	}
	return p.splitter.Split(pages)
}
