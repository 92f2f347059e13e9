package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Provider credentials. All three are required; the system refuses to start
	// without them so credential problems surface before any query is accepted.
	GoogleAPIKey string // embeddings (Gemini)
	QdrantAPIKey string // vector store
	GroqAPIKey   string // chat completions

	GroqBaseURL    string
	LLMModel       string
	LLMTemperature float32

	EmbeddingModel string
	EmbeddingDim   int

	QdrantURL        string
	QdrantCollection string

	DatasetDir string
	DBPath     string
	APIPort    string

	SimilarityTopK   int
	TopSourcesToShow int
	MaxRetries       int
	RetryWaitBase    time.Duration
	BatchSize        int
	BatchDelay       time.Duration
	BatchBackoff     time.Duration
	PDFRenderDPI     int

	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or a parent directory, it is
// loaded automatically; variables already set in the environment take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load() // Try current directory first

	// Walk up towards the project root looking for a .env file
	if wd, err := os.Getwd(); err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		GoogleAPIKey: os.Getenv("GOOGLE_API_KEY"),
		QdrantAPIKey: os.Getenv("QDRANT_API_KEY"),
		GroqAPIKey:   os.Getenv("GROQ_API_KEY"),

		GroqBaseURL:    getEnv("GROQ_BASE_URL", "https://api.groq.com/openai"),
		LLMModel:       getEnv("LLM_MODEL", "llama-3.3-70b-versatile"),
		LLMTemperature: 0.2,

		EmbeddingModel: getEnv("EMBEDDING_MODEL", "text-embedding-004"),

		QdrantURL:        getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "campus-docs"),

		DatasetDir: getEnv("DATASET_DIR", "./dataset"),
		DBPath:     getEnv("DB_PATH", "./data/campusdocs.db"),
		APIPort:    getEnv("API_PORT", "9000"),

		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	// All three provider credentials must be present before any query is accepted.
	var missing []string
	if cfg.GoogleAPIKey == "" {
		missing = append(missing, "GOOGLE_API_KEY")
	}
	if cfg.QdrantAPIKey == "" {
		missing = append(missing, "QDRANT_API_KEY")
	}
	if cfg.GroqAPIKey == "" {
		missing = append(missing, "GROQ_API_KEY")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required API keys: %s (check your .env file)", strings.Join(missing, ", "))
	}

	var err error
	// EmbeddingDim must match the output width of the embeddings model.
	// text-embedding-004 emits 768 dimensions; if the model changes, the Qdrant
	// collection must be recreated with the new width.
	if cfg.EmbeddingDim, err = getEnvInt("EMBEDDING_DIM", 768); err != nil {
		return nil, err
	}
	if cfg.SimilarityTopK, err = getEnvInt("SIMILARITY_TOP_K", 30); err != nil {
		return nil, err
	}
	if cfg.TopSourcesToShow, err = getEnvInt("TOP_SOURCES_TO_DISPLAY", 3); err != nil {
		return nil, err
	}
	if cfg.MaxRetries, err = getEnvInt("MAX_RETRIES", 3); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = getEnvInt("INGEST_BATCH_SIZE", 20); err != nil {
		return nil, err
	}
	if cfg.PDFRenderDPI, err = getEnvInt("PDF_RENDER_DPI", 120); err != nil {
		return nil, err
	}

	if cfg.RetryWaitBase, err = getEnvSeconds("RETRY_WAIT_BASE_SECONDS", 25); err != nil {
		return nil, err
	}
	if cfg.BatchDelay, err = getEnvSeconds("INGEST_BATCH_DELAY_SECONDS", 5); err != nil {
		return nil, err
	}
	if cfg.BatchBackoff, err = getEnvSeconds("INGEST_BATCH_BACKOFF_SECONDS", 30); err != nil {
		return nil, err
	}

	if cfg.EmbeddingDim <= 0 {
		return nil, fmt.Errorf("EMBEDDING_DIM must be greater than 0")
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("INGEST_BATCH_SIZE must be greater than 0")
	}
	if cfg.MaxRetries <= 0 {
		return nil, fmt.Errorf("MAX_RETRIES must be greater than 0")
	}

	cfg.LogLevel = parseLogLevel(getEnv("LOG_LEVEL", "info"))

	// Create the data directory up front so the registry DB can be opened.
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}

// getEnvSeconds gets a duration expressed as whole seconds from the environment.
func getEnvSeconds(key string, defaultSeconds int) (time.Duration, error) {
	n, err := getEnvInt(key, defaultSeconds)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return time.Duration(n) * time.Second, nil
}

// parseLogLevel maps a level name to a slog.Level, defaulting to info.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
