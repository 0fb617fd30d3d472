package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, "file: contract.pdf\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.File != "contract.pdf" {
		t.Errorf("file = %q", cfg.File)
	}
	if cfg.Store.Type != "chromem" || cfg.Store.Collection != "documents" || cfg.Store.VectorSize != 768 {
		t.Errorf("store defaults not applied: %+v", cfg.Store)
	}
	if cfg.RAG.ChunkSize != 800 || cfg.RAG.ChunkOverlap != 150 || cfg.RAG.TopK != 15 {
		t.Errorf("rag defaults not applied: %+v", cfg.RAG)
	}
	if cfg.OCR.Language != "eng" || cfg.OCR.DPI != 300 {
		t.Errorf("ocr defaults not applied: %+v", cfg.OCR)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("server default not applied: %+v", cfg.Server)
	}
	if cfg.EmbedLLM.Provider != "ollama" || cfg.ChatLLM.Provider != "ollama" {
		t.Errorf("llm provider defaults not applied")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
file: doc.pdf
store:
  type: postgres
  dsn: postgres://localhost:5432/pdfchat
rag:
  chunk_size: 500
  chunk_overlap: 50
  language: Italian
ocr:
  language: ita
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Store.Type != "postgres" {
		t.Errorf("store type = %q", cfg.Store.Type)
	}
	if cfg.RAG.ChunkSize != 500 || cfg.RAG.ChunkOverlap != 50 || cfg.RAG.Language != "Italian" {
		t.Errorf("rag overrides lost: %+v", cfg.RAG)
	}
	if cfg.OCR.Language != "ita" {
		t.Errorf("ocr language = %q", cfg.OCR.Language)
	}
}

func TestLoadConfigRejectsOverlapNotBelowSize(t *testing.T) {
	path := writeConfig(t, `
rag:
  chunk_size: 100
  chunk_overlap: 100
`)
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error when chunk_overlap >= chunk_size")
	}
}

func TestLoadConfigRejectsUnknownStore(t *testing.T) {
	path := writeConfig(t, "store:\n  type: redis\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for unknown store type")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
