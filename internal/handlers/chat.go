package handlers

import (
	"encoding/json"
	"net/http"
	"sync"

	"campusdocs-ai/internal/chat"
	"campusdocs-ai/internal/contextutil"
)

// ChatHandler handles HTTP requests for chat. Sessions live in memory behind
// a mutex; each session processes one query at a time.
type ChatHandler struct {
	processor *chat.Handler

	mu       sync.Mutex
	sessions map[string]*chat.Session
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(processor *chat.Handler) *ChatHandler {
	return &ChatHandler{
		processor: processor,
		sessions:  make(map[string]*chat.Session),
	}
}

// ChatRequest represents the HTTP request payload for chat. An empty
// session_id starts a new session. Model selects or switches the session
// model; with an empty message it resumes a query parked by a quota error.
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
	Model     string `json:"model,omitempty"`
}

// ChatResponse represents the HTTP response payload for chat. Either Answer
// or Error is set; AlternativeModels accompanies quota errors when other
// models remain selectable.
type ChatResponse struct {
	SessionID         string                 `json:"session_id"`
	Answer            string                 `json:"answer,omitempty"`
	Sources           []chat.Citation        `json:"sources,omitempty"`
	Error             string                 `json:"error,omitempty"`
	AlternativeModels []chat.ModelDescriptor `json:"alternative_models,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP handles HTTP requests for chat.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess := h.session(req.SessionID)

	sess.Lock()
	result := h.processor.Process(ctx, sess, req.Message, req.Model)
	sess.Unlock()

	resp := ChatResponse{
		SessionID:         sess.ID,
		Answer:            result.Answer,
		Sources:           result.Sources,
		Error:             result.ErrorMessage,
		AlternativeModels: result.Alternatives,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// session returns the session for the given ID, creating a new one for an
// empty or unknown ID.
func (h *ChatHandler) session(id string) *chat.Session {
	h.mu.Lock()
	defer h.mu.Unlock()

	if id != "" {
		if sess, ok := h.sessions[id]; ok {
			return sess
		}
	}
	sess := chat.NewSession()
	h.sessions[sess.ID] = sess
	return sess
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}
