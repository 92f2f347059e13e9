package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"campusdocs-ai/internal/handlers"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Chat      *handlers.ChatHandler
	Documents *handlers.DocumentsHandler
	Preview   *handlers.PreviewHandler
	Health    *handlers.HealthHandler
	IndexHTML string // Embedded HTML content
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/chat", deps.Chat)
		r.Method(http.MethodGet, "/documents", deps.Documents)
		r.Method(http.MethodGet, "/documents/preview", deps.Preview)
		r.Method(http.MethodGet, "/health", deps.Health)
	})

	// Serve the chat page at root
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(deps.IndexHTML))
	})

	return r
}
