package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	vectorstore_mocks "campusdocs-ai/internal/vectorstore/mocks"
)

func TestHealthHandler_Healthy(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := vectorstore_mocks.NewMockVectorStore(ctrl)
	store.EXPECT().CollectionExists(gomock.Any(), "campus-docs").Return(true, nil)

	h := NewHealthHandler(store, "campus-docs")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "healthy" || resp.Checks["vector_store"] != "ok" {
		t.Errorf("response = %+v", resp)
	}
}

func TestHealthHandler_VectorStoreDown(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := vectorstore_mocks.NewMockVectorStore(ctrl)
	store.EXPECT().CollectionExists(gomock.Any(), "campus-docs").Return(false, errors.New("connection refused"))

	h := NewHealthHandler(store, "campus-docs")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "unhealthy" || len(resp.Issues) == 0 {
		t.Errorf("response = %+v", resp)
	}
}
