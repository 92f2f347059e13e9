package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"campusdocs-ai/internal/contextutil"
	"campusdocs-ai/internal/storage"
)

// DocumentsHandler handles HTTP requests for browsing the ingested dataset.
type DocumentsHandler struct {
	documents storage.DocumentStore
}

// NewDocumentsHandler creates a new DocumentsHandler.
func NewDocumentsHandler(documents storage.DocumentStore) *DocumentsHandler {
	return &DocumentsHandler{documents: documents}
}

// DocumentInfo is one registry entry as exposed to the UI.
type DocumentInfo struct {
	FileName   string    `json:"file_name"`
	Year       int       `json:"year"`
	Pages      int       `json:"pages"`
	ChunkCount int       `json:"chunk_count"`
	IndexedAt  time.Time `json:"indexed_at"`
}

// CategoryGroup is a dataset category with its documents.
type CategoryGroup struct {
	Name      string         `json:"name"`
	Documents []DocumentInfo `json:"documents"`
}

// DocumentsResponse is the dataset browser payload.
type DocumentsResponse struct {
	Categories []CategoryGroup `json:"categories"`
	Total      int             `json:"total"`
}

// ServeHTTP handles HTTP requests for the dataset browser.
func (h *DocumentsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	docs, err := h.documents.ListAll(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list documents", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}

	// ListAll orders by category then file name, so grouping is a single pass.
	resp := DocumentsResponse{Total: len(docs)}
	for _, doc := range docs {
		info := DocumentInfo{
			FileName:   doc.FileName,
			Year:       doc.Year,
			Pages:      doc.Pages,
			ChunkCount: doc.ChunkCount,
			IndexedAt:  doc.IndexedAt,
		}
		if n := len(resp.Categories); n > 0 && resp.Categories[n-1].Name == doc.Category {
			resp.Categories[n-1].Documents = append(resp.Categories[n-1].Documents, info)
		} else {
			resp.Categories = append(resp.Categories, CategoryGroup{
				Name:      doc.Category,
				Documents: []DocumentInfo{info},
			})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
