package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"campusdocs-ai/internal/config"
	"campusdocs-ai/internal/contextutil"
	"campusdocs-ai/internal/indexer"
	"campusdocs-ai/internal/llm"
	"campusdocs-ai/internal/storage"
	"campusdocs-ai/internal/vectorstore"
)

func main() {
	mode := flag.String("mode", "simple", "chunking strategy: simple or hybrid")
	flag.Parse()

	if *mode != string(indexer.ModeSimple) && *mode != string(indexer.ModeHybrid) {
		log.Fatalf("Unknown mode %q, want simple or hybrid", *mode)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := contextutil.WithLogger(context.Background(), logger)

	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL, cfg.QdrantAPIKey)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}

	embedder, err := llm.NewGeminiEmbedder(ctx, cfg.GoogleAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDim)
	if err != nil {
		log.Fatalf("Failed to create embedding client: %v", err)
	}

	pipeline := indexer.NewPipeline(embedder, vectorStore, storage.NewDocumentRepo(db), indexer.PipelineConfig{
		Collection:   cfg.QdrantCollection,
		VectorSize:   cfg.EmbeddingDim,
		Mode:         indexer.Mode(*mode),
		BatchSize:    cfg.BatchSize,
		BatchDelay:   cfg.BatchDelay,
		BatchBackoff: cfg.BatchBackoff,
	})

	slog.Info("Starting ingestion", "dataset", cfg.DatasetDir, "mode", *mode, "collection", cfg.QdrantCollection)
	if err := pipeline.Run(ctx, cfg.DatasetDir); err != nil {
		log.Fatalf("Ingestion failed: %v", err)
	}
	slog.Info("Ingestion finished")
}
