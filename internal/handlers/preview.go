package handlers

import (
	"encoding/json"
	"errors"
	"image/png"
	"net/http"
	"path/filepath"
	"strconv"

	"campusdocs-ai/internal/contextutil"
	"campusdocs-ai/internal/pdf"
	"campusdocs-ai/internal/storage"
)

// PreviewHandler renders a single page of a dataset PDF as PNG, so the UI
// can show the page a citation points at.
type PreviewHandler struct {
	documents  storage.DocumentStore
	datasetDir string
	dpi        int
}

// NewPreviewHandler creates a new PreviewHandler.
func NewPreviewHandler(documents storage.DocumentStore, datasetDir string, dpi int) *PreviewHandler {
	return &PreviewHandler{
		documents:  documents,
		datasetDir: datasetDir,
		dpi:        dpi,
	}
}

// PreviewError is the placeholder payload when a page cannot be rendered.
// Render failures are soft: the UI shows the message instead of the image.
type PreviewError struct {
	Error string `json:"error"`
	File  string `json:"file"`
	Page  int    `json:"page"`
}

// ServeHTTP handles GET /api/documents/preview?file=&category=&page=.
// Page is the 1-based page label from a citation.
func (h *PreviewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	file := r.URL.Query().Get("file")
	category := r.URL.Query().Get("category")
	if file == "" {
		writeError(w, http.StatusBadRequest, "Missing file parameter")
		return
	}
	// Registry lookups and path joins must never escape the dataset tree.
	if file != filepath.Base(file) || (category != "" && category != filepath.Base(category)) {
		logger.WarnContext(ctx, "rejected preview path", "file", file, "category", category)
		writeError(w, http.StatusBadRequest, "Invalid file parameter")
		return
	}

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	if category == "" {
		doc, err := h.documents.GetByName(ctx, file)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Unknown document")
			return
		}
		if err != nil {
			logger.ErrorContext(ctx, "registry lookup failed", "file", file, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to resolve document")
			return
		}
		category = doc.Category
	}

	path := filepath.Join(h.datasetDir, category, file)
	img, err := pdf.RenderPage(ctx, path, page-1, h.dpi)
	if err != nil {
		// Soft failure: the placeholder is a regular response, not a 500.
		logger.WarnContext(ctx, "preview render failed", "path", path, "page", page, "error", err)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(PreviewError{
			Error: "Preview unavailable for this page",
			File:  file,
			Page:  page,
		})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if err := png.Encode(w, img); err != nil {
		logger.ErrorContext(ctx, "failed to encode preview", "path", path, "error", err)
	}
}
