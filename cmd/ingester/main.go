package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"codeberg.org/askrouter/server/internal/chunker"
	"codeberg.org/askrouter/server/internal/config"
	"codeberg.org/askrouter/server/internal/llm"
	"codeberg.org/askrouter/server/internal/logger"
	"codeberg.org/askrouter/server/internal/rag"
	"codeberg.org/askrouter/server/internal/storage"
)

func main() {
	flags := config.ParseIngestFlags()

	// load environment variables
	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL is required for ingestion")
	}

	// connect to database
	ctx := context.Background()
	db, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to create database pool", "error", err)
	}

	defer db.Close()

	if err := db.Ping(ctx); err != nil {
		logger.Fatal("failed to ping database", "error", err)
	}

	logger.Info("connected to database")

	if err := run(ctx, cfg, db, flags); err != nil {
		logger.Fatal("ingestion failed", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config, db *pgxpool.Pool, flags config.Flags) error {
	client := storage.NewClientFromPool(db, cfg.EmbeddingDimension)
	if err := client.EnsureSchema(ctx); err != nil {
		return err
	}

	providers, err := llm.NewProviders(cfg)
	if err != nil {
		return fmt.Errorf("failed to create providers: %w", err)
	}

	segmenter, err := chunker.New(chunker.Options{Size: cfg.ChunkSize, Overlap: cfg.ChunkOverlap})
	if err != nil {
		return fmt.Errorf("failed to create segmenter: %w", err)
	}

	pipeline := rag.New(segmenter, providers.Embedder, providers.Reranker, providers.Generator, client, client)

	files, err := collectFiles(flags.Path)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return fmt.Errorf("no .txt or .md files found under %s", flags.Path)
	}

	logger.Info("starting ingestion", "path", flags.Path, "files", len(files), "replace", flags.Replace)

	ingested := 0

	for _, f := range files {
		if err := ingestFile(ctx, pipeline, client, f, flags); err != nil {
			logger.Warn("failed to ingest file", "path", f.Path, "error", err)
			continue
		}

		ingested++
	}

	count, err := client.ChunkCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify chunk count: %w", err)
	}

	logger.Info("ingestion finished",
		"files_ingested", ingested,
		"files_failed", len(files)-ingested,
		"total_chunks", count,
	)

	if ingested == 0 {
		return fmt.Errorf("none of %d files could be ingested", len(files))
	}

	return nil
}
