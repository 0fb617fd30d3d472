package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pdf-chat/internal/app"
	"pdf-chat/internal/config"
	"pdf-chat/internal/helper"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	_ = godotenv.Load()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	filePath := flag.String("file", "", "Path to the document file (overrides config)")
	dryRun := flag.Bool("dry-run", false, "Parse and split only, do not touch the index")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	path := *filePath
	if path == "" {
		if cfg.File == "" {
			log.Fatal().Msg("Please provide a document using the -file flag or the config's file entry")
		}
		path = filepath.Join(cfg.DocumentsDir, cfg.File)
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error building application")
	}
	defer application.Close()

	ctx := context.Background()

	if *dryRun {
		chunks, err := application.Pipeline.DryRun(path)
		if err != nil {
			log.Fatal().Err(err).Msg("Error parsing document")
		}
		helper.PrettyPrint(chunks)
		return
	}

	if err := application.Pipeline.Ingest(ctx, path); err != nil {
		log.Fatal().Err(err).Msg("Error ingesting document")
	}

	chat(ctx, application)
}

// chat runs the interactive question loop until the user types 'q'. Before
// each answer the retrieved chunks are printed for inspection.
func chat(ctx context.Context, application *app.App) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("Ask a question (type 'q' to quit): ")
		if !scanner.Scan() {
			return
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if strings.EqualFold(question, "q") {
			return
		}

		fmt.Println("\nSEARCHING RELEVANT CHUNKS...")
		chunks, err := application.RAG.Retrieve(ctx, question)
		if err != nil {
			log.Error().Err(err).Msg("Error retrieving chunks")
			continue
		}
		for i, sc := range chunks {
			fmt.Println("\n" + strings.Repeat("=", 80))
			fmt.Printf("CHUNK #%d  (page: %d, score: %.4f)\n", i+1, sc.Chunk.PageNumber, sc.Score)
			fmt.Println(strings.Repeat("=", 80))
			fmt.Println(helper.Truncate(sc.Chunk.Text, 1500))
		}

		fmt.Println("\nGENERATING ANSWER...")
		answer, err := application.RAG.Answer(ctx, question)
		if err != nil {
			log.Error().Err(err).Msg("Error generating answer")
			continue
		}
		fmt.Printf("\nQuestion: %s\nAssistant: %s\n\n", question, answer)
	}
}
