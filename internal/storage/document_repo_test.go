package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

// testDB opens a fresh migrated database in a temporary directory.
func testDB(t *testing.T) *DocumentRepo {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}

	return NewDocumentRepo(db)
}

func TestDocumentRepo_UpsertAndGet(t *testing.T) {
	repo := testDB(t)
	ctx := context.Background()

	doc := &DocumentRecord{
		ID:         uuid.New().String(),
		FileName:   "2024_Curriculum_CS.pdf",
		Category:   "02_Curriculum",
		Year:       2024,
		Pages:      42,
		Hash:       "abc123",
		ChunkCount: 120,
	}

	if err := repo.Upsert(ctx, doc); err != nil {
		t.Fatalf("Upsert() error: %v", err)
	}

	got, err := repo.GetByName(ctx, "2024_Curriculum_CS.pdf")
	if err != nil {
		t.Fatalf("GetByName() error: %v", err)
	}
	if got.Category != doc.Category || got.Year != doc.Year || got.Pages != doc.Pages || got.ChunkCount != doc.ChunkCount {
		t.Errorf("GetByName() = %+v, want fields from %+v", got, doc)
	}

	// Upsert with the same file name replaces the record.
	doc.ChunkCount = 99
	doc.Hash = "def456"
	if err := repo.Upsert(ctx, doc); err != nil {
		t.Fatalf("Upsert() second call error: %v", err)
	}

	got, err = repo.GetByName(ctx, "2024_Curriculum_CS.pdf")
	if err != nil {
		t.Fatalf("GetByName() after update error: %v", err)
	}
	if got.ChunkCount != 99 || got.Hash != "def456" {
		t.Errorf("GetByName() after update = %+v, want chunk_count=99 hash=def456", got)
	}
}

func TestDocumentRepo_GetByName_NotFound(t *testing.T) {
	repo := testDB(t)

	_, err := repo.GetByName(context.Background(), "missing.pdf")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByName() error = %v, want ErrNotFound", err)
	}
}

func TestDocumentRepo_ListAll_Ordering(t *testing.T) {
	repo := testDB(t)
	ctx := context.Background()

	for _, doc := range []DocumentRecord{
		{ID: uuid.New().String(), FileName: "2023_Regulations_Exams.pdf", Category: "03_Regulations", Year: 2023, Pages: 10, Hash: "h1", ChunkCount: 5},
		{ID: uuid.New().String(), FileName: "2024_Curriculum_CS.pdf", Category: "02_Curriculum", Year: 2024, Pages: 20, Hash: "h2", ChunkCount: 8},
		{ID: uuid.New().String(), FileName: "2024_Curriculum_IT.pdf", Category: "02_Curriculum", Year: 2024, Pages: 18, Hash: "h3", ChunkCount: 7},
	} {
		d := doc
		if err := repo.Upsert(ctx, &d); err != nil {
			t.Fatalf("Upsert(%s) error: %v", doc.FileName, err)
		}
	}

	docs, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error: %v", err)
	}

	if len(docs) != 3 {
		t.Fatalf("ListAll() returned %d documents, want 3", len(docs))
	}

	wantOrder := []string{"2024_Curriculum_CS.pdf", "2024_Curriculum_IT.pdf", "2023_Regulations_Exams.pdf"}
	for i, want := range wantOrder {
		if docs[i].FileName != want {
			t.Errorf("ListAll()[%d] = %s, want %s", i, docs[i].FileName, want)
		}
	}
}
