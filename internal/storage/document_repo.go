package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks campusdocs-ai/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a record is not found.
var ErrNotFound = errors.New("record not found")

// DocumentRecord describes one ingested dataset document in the registry.
// The registry is written during ingestion and read by the dataset browser and
// the PDF preview path resolution; conversation history is deliberately not
// stored here.
type DocumentRecord struct {
	ID         string // UUID
	FileName   string // e.g. "2024_Curriculum_CS.pdf"
	Category   string // parent directory name in the dataset tree
	Year       int
	Pages      int
	Hash       string // SHA256 hex of the PDF content
	ChunkCount int
	IndexedAt  time.Time
}

// DocumentStore defines the interface for document registry operations.
type DocumentStore interface {
	// Upsert inserts a new document record or replaces an existing one with
	// the same file name.
	Upsert(ctx context.Context, doc *DocumentRecord) error
	// ListAll returns all documents ordered by category, then file name.
	ListAll(ctx context.Context) ([]DocumentRecord, error)
	// GetByName gets a document by file name. Returns ErrNotFound if missing.
	GetByName(ctx context.Context, fileName string) (*DocumentRecord, error)
}

// DocumentRepo provides methods for document registry operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Upsert inserts a new document record or replaces an existing one.
func (r *DocumentRepo) Upsert(ctx context.Context, doc *DocumentRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (id, file_name, category, year, pages, hash, chunk_count, indexed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (file_name) DO UPDATE SET
		 category = excluded.category, year = excluded.year, pages = excluded.pages,
		 hash = excluded.hash, chunk_count = excluded.chunk_count, indexed_at = CURRENT_TIMESTAMP`,
		doc.ID, doc.FileName, doc.Category, doc.Year, doc.Pages, doc.Hash, doc.ChunkCount,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	return nil
}

// ListAll returns all documents ordered by category, then file name.
func (r *DocumentRepo) ListAll(ctx context.Context) ([]DocumentRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, file_name, category, year, pages, hash, chunk_count, indexed_at FROM documents ORDER BY category, file_name")
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var docs []DocumentRecord
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	return docs, nil
}

// GetByName gets a document by file name. Returns ErrNotFound if missing.
func (r *DocumentRepo) GetByName(ctx context.Context, fileName string) (*DocumentRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, file_name, category, year, pages, hash, chunk_count, indexed_at FROM documents WHERE file_name = ?",
		fileName,
	)

	doc, err := scanDocument(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// scanDocument scans a document row shared between ListAll and GetByName.
func scanDocument(scan func(dest ...any) error) (*DocumentRecord, error) {
	var doc DocumentRecord
	var indexedAtStr string

	err := scan(&doc.ID, &doc.FileName, &doc.Category, &doc.Year, &doc.Pages, &doc.Hash, &doc.ChunkCount, &indexedAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan document: %w", err)
	}

	// SQLite DATETIME columns come back as strings in one of two layouts.
	doc.IndexedAt, err = time.Parse("2006-01-02 15:04:05", indexedAtStr)
	if err != nil {
		doc.IndexedAt, err = time.Parse(time.RFC3339, indexedAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse indexed_at timestamp: %w", err)
		}
	}

	return &doc, nil
}
