package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"campusdocs-ai/internal/contextutil"
	"campusdocs-ai/internal/metadata"
	"campusdocs-ai/internal/pdf"
	"campusdocs-ai/internal/storage"
	"campusdocs-ai/internal/vectorstore"
)

// Mode selects the chunking strategy for an ingestion run.
type Mode string

const (
	// ModeSimple uses fixed-size sentence chunks with overlap.
	ModeSimple Mode = "simple"
	// ModeHybrid uses hierarchical leaf chunks followed by semantic refinement.
	ModeHybrid Mode = "hybrid"
)

// PipelineConfig carries the tunables of an ingestion run.
type PipelineConfig struct {
	Collection   string
	VectorSize   int
	Mode         Mode
	BatchSize    int
	BatchDelay   time.Duration
	BatchBackoff time.Duration
}

// Pipeline ingests a dataset directory of PDFs into the vector store and the
// document registry. Ingestion is destructive: the target collection is
// recreated at the start of every run.
type Pipeline struct {
	embedder  Embedder
	store     vectorstore.VectorStore
	documents storage.DocumentStore
	cfg       PipelineConfig
	limiter   *rate.Limiter
	sleep     func(time.Duration)
	sentence  *SentenceSplitter
	hierarchy *HierarchicalSplitter
	refiner   *SemanticRefiner
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(embedder Embedder, store vectorstore.VectorStore, documents storage.DocumentStore, cfg PipelineConfig) *Pipeline {
	return &Pipeline{
		embedder:  embedder,
		store:     store,
		documents: documents,
		cfg:       cfg,
		limiter:   rate.NewLimiter(rate.Every(cfg.BatchDelay), 1),
		sleep:     time.Sleep,
		sentence:  NewSentenceSplitter(),
		hierarchy: NewHierarchicalSplitter(),
		refiner:   NewSemanticRefiner(embedder),
	}
}

// Run ingests every PDF under datasetDir. Per-file and per-batch failures are
// logged and skipped; the run only aborts on collection recreation failure or
// context cancellation. A failed embedding batch is dropped permanently after
// a backoff, it is not requeued.
func (p *Pipeline) Run(ctx context.Context, datasetDir string) error {
	logger := contextutil.LoggerFromContext(ctx)

	if err := p.store.Recreate(ctx, p.cfg.Collection, p.cfg.VectorSize); err != nil {
		return fmt.Errorf("failed to recreate collection %s: %w", p.cfg.Collection, err)
	}
	logger.InfoContext(ctx, "collection recreated", "collection", p.cfg.Collection, "vector_size", p.cfg.VectorSize)

	files, err := findPDFs(datasetDir)
	if err != nil {
		return fmt.Errorf("failed to scan dataset directory %s: %w", datasetDir, err)
	}
	if len(files) == 0 {
		logger.WarnContext(ctx, "no PDF files found in dataset directory", "dir", datasetDir)
		return nil
	}

	var nodes []Node
	indexed := 0
	for _, path := range files {
		docNodes, record, err := p.chunkDocument(ctx, path)
		if err != nil {
			logger.WarnContext(ctx, "skipping document", "path", path, "error", err)
			continue
		}
		if err := p.documents.Upsert(ctx, record); err != nil {
			logger.WarnContext(ctx, "failed to register document", "file_name", record.FileName, "error", err)
		}
		nodes = append(nodes, docNodes...)
		indexed++
		logger.InfoContext(ctx, "document chunked",
			"file_name", record.FileName, "pages", record.Pages, "chunks", record.ChunkCount)
	}

	upserted, dropped, err := p.upsertBatches(ctx, nodes)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "ingestion complete",
		"documents", indexed, "chunks", len(nodes), "upserted", upserted, "dropped", dropped)
	return nil
}

// chunkDocument extracts, chunks and annotates a single PDF.
func (p *Pipeline) chunkDocument(ctx context.Context, path string) ([]Node, *storage.DocumentRecord, error) {
	pages, err := pdf.ExtractPages(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	if len(pages) == 0 {
		return nil, nil, fmt.Errorf("no extractable pages in %s", path)
	}

	meta := metadata.FromPath(ctx, path)

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	sum := sha256.Sum256(raw)

	var nodes []Node
	for _, page := range pages {
		var chunks []string
		switch p.cfg.Mode {
		case ModeHybrid:
			chunks = p.hierarchy.Leaves(page.Text)
		default:
			chunks = p.sentence.Split(page.Text)
		}
		for _, chunk := range chunks {
			nodes = append(nodes, Node{
				Text: chunk,
				Meta: map[string]any{
					"file_name":  meta.FileName,
					"page_label": page.Label,
					"category":   meta.Category,
					"year":       meta.Year,
				},
			})
		}
	}

	if p.cfg.Mode == ModeHybrid {
		nodes = p.refiner.Refine(ctx, nodes)
	}

	record := &storage.DocumentRecord{
		ID:         uuid.New().String(),
		FileName:   meta.FileName,
		Category:   meta.Category,
		Year:       meta.Year,
		Pages:      len(pages),
		Hash:       hex.EncodeToString(sum[:]),
		ChunkCount: len(nodes),
	}
	return nodes, record, nil
}

// upsertBatches embeds and upserts nodes in rate-limited batches.
// Returns the number of upserted and dropped chunks.
func (p *Pipeline) upsertBatches(ctx context.Context, nodes []Node) (int, int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	upserted, dropped := 0, 0
	for start := 0; start < len(nodes); start += p.cfg.BatchSize {
		end := start + p.cfg.BatchSize
		if end > len(nodes) {
			end = len(nodes)
		}
		batch := nodes[start:end]

		if err := p.limiter.Wait(ctx); err != nil {
			return upserted, dropped, err
		}

		texts := make([]string, len(batch))
		for i, node := range batch {
			texts[i] = node.Text
		}

		vectors, err := p.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			logger.ErrorContext(ctx, "embedding batch failed, dropping batch",
				"batch_start", start, "batch_size", len(batch), "error", err)
			dropped += len(batch)
			p.sleep(p.cfg.BatchBackoff)
			continue
		}

		points := make([]vectorstore.Point, len(batch))
		for i, node := range batch {
			payload := make(map[string]any, len(node.Meta)+1)
			for k, v := range node.Meta {
				payload[k] = v
			}
			payload["text"] = node.Text
			points[i] = vectorstore.Point{
				ID:   uuid.New().String(),
				Vec:  vectors[i],
				Meta: payload,
			}
		}

		if err := p.store.Upsert(ctx, p.cfg.Collection, points); err != nil {
			logger.ErrorContext(ctx, "vector upsert failed, dropping batch",
				"batch_start", start, "batch_size", len(batch), "error", err)
			dropped += len(batch)
			p.sleep(p.cfg.BatchBackoff)
			continue
		}
		upserted += len(batch)
	}

	return upserted, dropped, nil
}

// findPDFs returns all .pdf files under dir, sorted for deterministic runs.
func findPDFs(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".pdf") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
