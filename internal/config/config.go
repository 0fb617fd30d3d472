package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StoreConfig selects and configures the vector index backend.
type StoreConfig struct {
	Type       string `yaml:"type"` // chromem or postgres
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
	DSN        string `yaml:"dsn"`
	Password   string `yaml:"password"`
	Debug      bool   `yaml:"debug"`
	VectorSize int    `yaml:"vector_size"`
}

// LLMConfig configures one model collaborator (embedding or chat).
type LLMConfig struct {
	Provider string `yaml:"provider"` // ollama or openai
	BaseURL  string `yaml:"base_url"`
	Key      string `yaml:"key"`
	Model    string `yaml:"model"`
}

// RAGConfig configures chunking and retrieval.
type RAGConfig struct {
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
	TopK         int    `yaml:"top_k"`
	Language     string `yaml:"language"`
}

// OCRConfig configures the fallback path for scanned PDF pages.
type OCRConfig struct {
	Language string  `yaml:"language"`
	DPI      float64 `yaml:"dpi"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type Config struct {
	DocumentsDir string       `yaml:"documents_dir"`
	File         string       `yaml:"file"`
	Store        StoreConfig  `yaml:"store"`
	EmbedLLM     LLMConfig    `yaml:"embed_llm"`
	ChatLLM      LLMConfig    `yaml:"chat_llm"`
	RAG          RAGConfig    `yaml:"rag"`
	OCR          OCRConfig    `yaml:"ocr"`
	Server       ServerConfig `yaml:"server"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.DocumentsDir == "" {
		cfg.DocumentsDir = "./data"
	}
	if cfg.Store.Type == "" {
		cfg.Store.Type = "chromem"
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "./db/chromem"
	}
	if cfg.Store.Collection == "" {
		cfg.Store.Collection = "documents"
	}
	if cfg.Store.VectorSize == 0 {
		cfg.Store.VectorSize = 768
	}
	if cfg.EmbedLLM.Provider == "" {
		cfg.EmbedLLM.Provider = "ollama"
	}
	if cfg.ChatLLM.Provider == "" {
		cfg.ChatLLM.Provider = "ollama"
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = 800
	}
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = 150
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 15
	}
	if cfg.RAG.Language == "" {
		cfg.RAG.Language = "English"
	}
	if cfg.OCR.Language == "" {
		cfg.OCR.Language = "eng"
	}
	if cfg.OCR.DPI == 0 {
		cfg.OCR.DPI = 300
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
}

func validate(cfg *Config) error {
	if cfg.RAG.ChunkOverlap >= cfg.RAG.ChunkSize {
		return fmt.Errorf("chunk_overlap (%d) must be less than chunk_size (%d)", cfg.RAG.ChunkOverlap, cfg.RAG.ChunkSize)
	}
	switch cfg.Store.Type {
	case "chromem", "postgres":
	default:
		return fmt.Errorf("unknown store type: %s", cfg.Store.Type)
	}
	return nil
}
