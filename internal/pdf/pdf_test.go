package pdf

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

const fixturePDF = "testdata/2024_Guide_Enrollment.pdf"

func TestExtractPages(t *testing.T) {
	pages, err := ExtractPages(context.Background(), fixturePDF)
	if err != nil {
		t.Fatalf("ExtractPages() error: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("ExtractPages() returned %d pages, want 1", len(pages))
	}
	if pages[0].Label != "1" {
		t.Errorf("page label = %q, want 1", pages[0].Label)
	}
	if !strings.Contains(pages[0].Text, "Enrollment closes in October") {
		t.Errorf("page text = %q, want the fixture sentence", pages[0].Text)
	}
}

func TestExtractPages_MissingFile(t *testing.T) {
	if _, err := ExtractPages(context.Background(), filepath.Join(t.TempDir(), "absent.pdf")); err == nil {
		t.Error("ExtractPages() expected error for missing file")
	}
}

func TestRenderPage(t *testing.T) {
	tests := []struct {
		name string
		page int
	}{
		{name: "first page", page: 0},
		{name: "out-of-range page falls back to the first", page: 7},
		{name: "negative page falls back to the first", page: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := RenderPage(context.Background(), fixturePDF, tt.page, 72)
			if err != nil {
				t.Fatalf("RenderPage() error: %v", err)
			}
			if img == nil {
				t.Fatal("RenderPage() returned nil image")
			}
			bounds := img.Bounds()
			if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
				t.Errorf("RenderPage() bounds = %v, want a non-empty image", bounds)
			}
		})
	}
}

func TestRenderPage_MissingFile(t *testing.T) {
	if _, err := RenderPage(context.Background(), filepath.Join(t.TempDir(), "absent.pdf"), 0, 72); err == nil {
		t.Error("RenderPage() expected error for missing file")
	}
}

func TestClampPage(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		pageCount int
		want      int
	}{
		{name: "first page", page: 0, pageCount: 10, want: 0},
		{name: "middle page", page: 4, pageCount: 10, want: 4},
		{name: "last page", page: 9, pageCount: 10, want: 9},
		{name: "negative index clamps to first", page: -1, pageCount: 10, want: 0},
		{name: "index equal to count clamps to first", page: 10, pageCount: 10, want: 0},
		{name: "index far past the end clamps to first", page: 500, pageCount: 10, want: 0},
		{name: "single page document", page: 3, pageCount: 1, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampPage(tt.page, tt.pageCount); got != tt.want {
				t.Errorf("ClampPage(%d, %d) = %d, want %d", tt.page, tt.pageCount, got, tt.want)
			}
		})
	}
}
