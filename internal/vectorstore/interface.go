package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks campusdocs-ai/internal/vectorstore VectorStore

import "context"

// Point represents a vector point with chunk metadata.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// SearchResult represents a single result of a similarity search.
// Score is a pointer because some stores can omit similarity scores; a missing
// score must be rendered as "N/A" in citations, never fabricated.
type SearchResult struct {
	PointID string
	Score   *float32
	Meta    map[string]any
}

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// Recreate destructively recreates the collection: an existing collection
	// of the same name is deleted first. Used at the start of an ingestion run.
	Recreate(ctx context.Context, collection string, vectorSize int) error

	// CollectionExists reports whether the collection exists.
	CollectionExists(ctx context.Context, collection string) (bool, error)

	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search returns the k nearest points to the query vector, best first.
	Search(ctx context.Context, collection string, query []float32, k int) ([]SearchResult, error)

	// Info returns collection statistics for health and browsing endpoints.
	Info(ctx context.Context, collection string) (*CollectionInfo, error)
}

// CollectionInfo contains basic information about a collection.
type CollectionInfo struct {
	VectorSize  int
	PointsCount int
	Status      string
}
