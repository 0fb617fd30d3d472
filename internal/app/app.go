package app

import (
	"fmt"
	"path/filepath"

	"pdf-chat/internal/chromemdb"
	"pdf-chat/internal/config"
	"pdf-chat/internal/db"
	"pdf-chat/internal/embedding"
	"pdf-chat/internal/index"
	"pdf-chat/internal/ingest"
	"pdf-chat/internal/llmservice"
	"pdf-chat/internal/rag"
	"pdf-chat/internal/splitter"
)

// App wires embedder, index, pipeline and answerer together once. Front
// ends receive it by reference; there are no package-level singletons.
type App struct {
	Cfg      *config.Config
	Index    index.Index
	Pipeline *ingest.Pipeline
	RAG      *rag.RAG

	closers []func() error
}

func New(cfg *config.Config) (*App, error) {
	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		return nil, fmt.Errorf("initializing embedder: %w", err)
	}

	var idx index.Index
	var closers []func() error
	switch cfg.Store.Type {
	case "chromem":
		idx, err = chromemdb.NewStore(cfg.Store.Path, cfg.Store.Collection, embedder)
		if err != nil {
			return nil, err
		}
	case "postgres":
		sqldb, err := db.ConnectDB(&cfg.Store)
		if err != nil {
			return nil, err
		}
		store := db.NewStore(db.NewDB(sqldb, cfg.Store.Debug), embedder, cfg.Store.VectorSize)
		closers = append(closers, store.Close)
		idx = store
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Store.Type)
	}

	split, err := splitter.New(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	chatModel, err := llmservice.NewChatModel(&cfg.ChatLLM)
	if err != nil {
		return nil, fmt.Errorf("initializing chat model: %w", err)
	}

	return &App{
		Cfg:      cfg,
		Index:    idx,
		Pipeline: ingest.NewPipeline(split, idx, cfg.OCR),
		RAG:      rag.NewRAG(idx, chatModel, rag.DefaultPromptTemplate(cfg.RAG.Language), cfg.RAG.TopK),
		closers:  closers,
	}, nil
}

func (a *App) Close() error {
	var firstErr error
	for _, c := range a.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// DocumentPath resolves the configured input file inside documents_dir.
func (a *App) DocumentPath() string {
	return filepath.Join(a.Cfg.DocumentsDir, a.Cfg.File)
}
