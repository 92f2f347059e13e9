package pdf

import (
	"context"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"

	"campusdocs-ai/internal/contextutil"
)

// referenceDPI is the PDF/PostScript reference resolution; rendering at dpi
// applies a zoom of dpi/referenceDPI to the page.
const referenceDPI = 72

// RenderPage rasterizes a single page of a PDF into an image at the given DPI.
//
// The page index is zero-based. Out-of-range indices are clamped to the first
// page instead of failing, so a citation pointing at a stale page label still
// produces a usable preview. Errors are soft failures: the caller is expected to
// log and show a placeholder rather than abort the request.
func RenderPage(ctx context.Context, path string, page, dpi int) (image.Image, error) {
	logger := contextutil.LoggerFromContext(ctx)

	doc, err := fitz.New(path)
	if err != nil {
		logger.WarnContext(ctx, "failed to open PDF for rendering", "path", path, "error", err)
		return nil, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	defer func() {
		_ = doc.Close()
	}()

	clamped := ClampPage(page, doc.NumPage())
	if clamped != page {
		logger.DebugContext(ctx, "page index out of range, clamped to first page",
			"path", path, "requested_page", page, "page_count", doc.NumPage())
	}

	img, err := doc.ImageDPI(clamped, float64(dpi))
	if err != nil {
		logger.WarnContext(ctx, "failed to render PDF page", "path", path, "page", clamped, "error", err)
		return nil, fmt.Errorf("failed to render page %d of %s: %w", clamped, path, err)
	}

	return img, nil
}

// ClampPage clamps a zero-based page index into [0, pageCount), substituting
// the first page for any out-of-range request.
func ClampPage(page, pageCount int) int {
	if page < 0 || page >= pageCount {
		return 0
	}
	return page
}

// Page holds the extracted text of a single PDF page.
type Page struct {
	// Label is the 1-based page number as shown to users and stored in
	// chunk metadata.
	Label string
	Text  string
}

// ExtractPages extracts the text of every page in a PDF, in page order.
// Pages that fail to extract are skipped with a warning; a document where every
// page fails still returns an empty slice and no error, leaving the decision to
// the ingestion pipeline.
func ExtractPages(ctx context.Context, path string) ([]Page, error) {
	logger := contextutil.LoggerFromContext(ctx)

	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	defer func() {
		_ = doc.Close()
	}()

	pages := make([]Page, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			logger.WarnContext(ctx, "failed to extract page text", "path", path, "page", i, "error", err)
			continue
		}
		pages = append(pages, Page{
			Label: fmt.Sprintf("%d", i+1),
			Text:  text,
		})
	}

	return pages, nil
}
