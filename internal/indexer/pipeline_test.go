package indexer

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"campusdocs-ai/internal/indexer/mocks"
	storage_mocks "campusdocs-ai/internal/storage/mocks"
	"campusdocs-ai/internal/vectorstore"
	vectorstore_mocks "campusdocs-ai/internal/vectorstore/mocks"
)

func testPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Collection:   "test-collection",
		VectorSize:   768,
		Mode:         ModeSimple,
		BatchSize:    2,
		BatchDelay:   time.Millisecond,
		BatchBackoff: 30 * time.Second,
	}
}

func TestNewPipeline(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p := NewPipeline(
		mocks.NewMockEmbedder(ctrl),
		vectorstore_mocks.NewMockVectorStore(ctrl),
		storage_mocks.NewMockDocumentStore(ctrl),
		testPipelineConfig(),
	)

	if p == nil {
		t.Fatal("NewPipeline() returned nil")
	}
	if p.sentence == nil || p.hierarchy == nil || p.refiner == nil {
		t.Error("NewPipeline() splitters should not be nil")
	}
	if p.cfg.Collection != "test-collection" {
		t.Errorf("NewPipeline() collection = %v, want test-collection", p.cfg.Collection)
	}
}

func TestPipeline_Run_EmptyDataset(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := vectorstore_mocks.NewMockVectorStore(ctrl)
	store.EXPECT().Recreate(gomock.Any(), "test-collection", 768).Return(nil)

	p := NewPipeline(
		mocks.NewMockEmbedder(ctrl),
		store,
		storage_mocks.NewMockDocumentStore(ctrl),
		testPipelineConfig(),
	)

	if err := p.Run(context.Background(), t.TempDir()); err != nil {
		t.Errorf("Run() on empty dataset error: %v", err)
	}
}

func TestPipeline_Run_RecreateError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := vectorstore_mocks.NewMockVectorStore(ctrl)
	store.EXPECT().Recreate(gomock.Any(), "test-collection", 768).Return(errors.New("qdrant unavailable"))

	p := NewPipeline(
		mocks.NewMockEmbedder(ctrl),
		store,
		storage_mocks.NewMockDocumentStore(ctrl),
		testPipelineConfig(),
	)

	if err := p.Run(context.Background(), t.TempDir()); err == nil {
		t.Error("Run() should fail when the collection cannot be recreated")
	}
}

func TestPipeline_UpsertBatches_DropsFailedBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	embedder := mocks.NewMockEmbedder(ctrl)
	store := vectorstore_mocks.NewMockVectorStore(ctrl)

	// First batch fails at the embedder and is dropped after a backoff.
	// The second batch goes through.
	gomock.InOrder(
		embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return(nil, errors.New("rate limited")),
		embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, texts []string) ([][]float32, error) {
				vectors := make([][]float32, len(texts))
				for i := range texts {
					vectors[i] = []float32{0.1, 0.2}
				}
				return vectors, nil
			}),
	)
	store.EXPECT().Upsert(gomock.Any(), "test-collection", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, points []vectorstore.Point) error {
			if len(points) != 1 {
				t.Errorf("Upsert() got %d points, want 1", len(points))
			}
			if points[0].Meta["text"] != "chunk three" {
				t.Errorf("Upsert() point text = %v, want chunk three", points[0].Meta["text"])
			}
			return nil
		})

	p := NewPipeline(embedder, store, storage_mocks.NewMockDocumentStore(ctrl), testPipelineConfig())

	var slept []time.Duration
	p.sleep = func(d time.Duration) { slept = append(slept, d) }

	nodes := []Node{
		{Text: "chunk one", Meta: map[string]any{"file_name": "a.pdf"}},
		{Text: "chunk two", Meta: map[string]any{"file_name": "a.pdf"}},
		{Text: "chunk three", Meta: map[string]any{"file_name": "a.pdf"}},
	}

	upserted, dropped, err := p.upsertBatches(context.Background(), nodes)
	if err != nil {
		t.Fatalf("upsertBatches() error: %v", err)
	}
	if upserted != 1 {
		t.Errorf("upserted = %d, want 1", upserted)
	}
	if dropped != 2 {
		t.Errorf("dropped = %d, want 2", dropped)
	}
	if len(slept) != 1 || slept[0] != 30*time.Second {
		t.Errorf("sleep calls = %v, want one backoff of 30s", slept)
	}
}

func TestPipeline_UpsertBatches_DropsFailedUpsert(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	embedder := mocks.NewMockEmbedder(ctrl)
	embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return([][]float32{{0.1}}, nil)

	store := vectorstore_mocks.NewMockVectorStore(ctrl)
	store.EXPECT().Upsert(gomock.Any(), "test-collection", gomock.Any()).Return(errors.New("write failed"))

	p := NewPipeline(embedder, store, storage_mocks.NewMockDocumentStore(ctrl), testPipelineConfig())
	p.sleep = func(time.Duration) {}

	upserted, dropped, err := p.upsertBatches(context.Background(), []Node{{Text: "only chunk"}})
	if err != nil {
		t.Fatalf("upsertBatches() error: %v", err)
	}
	if upserted != 0 || dropped != 1 {
		t.Errorf("upserted = %d dropped = %d, want 0 and 1", upserted, dropped)
	}
}
