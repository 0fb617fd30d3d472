package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pdf-chat/internal/app"
	"pdf-chat/internal/config"
	"pdf-chat/internal/server"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	_ = godotenv.Load()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error building application")
	}
	defer application.Close()

	if cfg.File == "" {
		log.Fatal().Msg("Please provide a document via the config's file entry")
	}

	// The document is ingested once, before the endpoint becomes available.
	// The handlers only query, so no further index serialization is needed.
	path := filepath.Join(cfg.DocumentsDir, cfg.File)
	log.Info().Str("file", path).Msg("ingesting document before serving")
	if err := application.Pipeline.Ingest(context.Background(), path); err != nil {
		log.Fatal().Err(err).Msg("Error ingesting document")
	}

	router := server.Router(application.RAG)
	log.Info().Str("addr", cfg.Server.Addr).Msg("starting HTTP server")
	if err := router.Run(cfg.Server.Addr); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
