package main

import (
	"context"
	_ "embed"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"campusdocs-ai/internal/chat"
	"campusdocs-ai/internal/config"
	"campusdocs-ai/internal/handlers"
	"campusdocs-ai/internal/http"
	"campusdocs-ai/internal/llm"
	"campusdocs-ai/internal/rag"
	"campusdocs-ai/internal/storage"
	"campusdocs-ai/internal/vectorstore"
)

//go:embed index.html
var indexHTML string

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize the document registry
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
	slog.Info("Database initialized", "path", cfg.DBPath)

	documentRepo := storage.NewDocumentRepo(db)

	ctx := context.Background()

	// Initialize Qdrant vector store
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL, cfg.QdrantAPIKey)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}

	exists, err := vectorStore.CollectionExists(ctx, cfg.QdrantCollection)
	if err != nil {
		log.Fatalf("Failed to reach Qdrant: %v", err)
	}
	if !exists {
		slog.Warn("Collection does not exist yet, run the ingest command first", "collection", cfg.QdrantCollection)
	}

	// Validate the embedding client vector size (fail-fast)
	embedder, err := llm.NewGeminiEmbedder(ctx, cfg.GoogleAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDim)
	if err != nil {
		log.Fatalf("Failed to create embedding client: %v", err)
	}
	testEmbeddings, err := embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.EmbeddingDim {
		log.Fatalf("Embedding vector size mismatch: expected %d, got %d", cfg.EmbeddingDim, len(testEmbeddings[0]))
	}
	slog.Info("Embedding client validated", "model", cfg.EmbeddingModel, "vector_size", cfg.EmbeddingDim)

	// Create the LLM client and RAG engine
	llmClient := llm.NewGroqClient(cfg.GroqBaseURL, cfg.GroqAPIKey, cfg.LLMModel, cfg.LLMTemperature)
	ragEngine, err := rag.NewEngine(embedder, vectorStore, llmClient, cfg.QdrantCollection, cfg.SimilarityTopK)
	if err != nil {
		log.Fatalf("Failed to create RAG engine: %v", err)
	}
	slog.Info("RAG engine initialized", "model", cfg.LLMModel, "top_k", cfg.SimilarityTopK)

	chatProcessor := chat.NewHandler(ragEngine, cfg.MaxRetries, cfg.RetryWaitBase, cfg.TopSourcesToShow)

	deps := &http.Deps{
		Chat:      handlers.NewChatHandler(chatProcessor),
		Documents: handlers.NewDocumentsHandler(documentRepo),
		Preview:   handlers.NewPreviewHandler(documentRepo, cfg.DatasetDir, cfg.PDFRenderDPI),
		Health:    handlers.NewHealthHandler(vectorStore, cfg.QdrantCollection),
		IndexHTML: indexHTML,
	}
	router := http.NewRouter(deps)

	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
