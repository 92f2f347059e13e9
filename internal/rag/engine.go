package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks campusdocs-ai/internal/rag Engine,Embedder,Chatter

import (
	"context"
	"errors"
	"fmt"

	"campusdocs-ai/internal/contextutil"
	"campusdocs-ai/internal/llm"
	"campusdocs-ai/internal/vectorstore"
)

// Embedder produces one embedding vector per input text.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Chatter generates a chat completion for a message sequence.
type Chatter interface {
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

// Engine answers a question strictly from retrieved document context.
type Engine interface {
	// Ask embeds the query, retrieves the most similar chunks and asks the
	// LLM to answer from them. An empty model uses the client default; a
	// non-empty model overrides it for this call. Errors from the LLM are
	// returned with their provider message intact.
	Ask(ctx context.Context, query, model string, history []llm.Message) (*Answer, error)
}

// RAGEngine implements Engine on a vector store and an LLM client.
type RAGEngine struct {
	embedder   Embedder
	store      vectorstore.VectorStore
	chatter    Chatter
	collection string
	topK       int
}

// NewEngine creates a RAG engine. All three providers are required.
func NewEngine(embedder Embedder, store vectorstore.VectorStore, chatter Chatter, collection string, topK int) (*RAGEngine, error) {
	if embedder == nil {
		return nil, errors.New("rag engine requires an embedder")
	}
	if store == nil {
		return nil, errors.New("rag engine requires a vector store")
	}
	if chatter == nil {
		return nil, errors.New("rag engine requires an llm client")
	}
	return &RAGEngine{
		embedder:   embedder,
		store:      store,
		chatter:    chatter,
		collection: collection,
		topK:       topK,
	}, nil
}

// Ask implements Engine.
func (e *RAGEngine) Ask(ctx context.Context, query, model string, history []llm.Message) (*Answer, error) {
	logger := contextutil.LoggerFromContext(ctx)

	vectors, err := e.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected 1 query embedding, got %d", len(vectors))
	}

	results, err := e.store.Search(ctx, e.collection, vectors[0], e.topK)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	logger.DebugContext(ctx, "retrieved context chunks", "count", len(results), "top_k", e.topK)

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{
		Role:    llm.RoleSystem,
		Content: systemPrompt + "\n\n" + buildContext(results),
	})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: query})

	text, err := e.chatter.ChatWithMessages(ctx, messages, llm.ChatParams{Model: model})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	sources := make([]ScoredNode, len(results))
	for i, r := range results {
		chunkText, _ := r.Meta["text"].(string)
		sources[i] = ScoredNode{
			Text:  chunkText,
			Score: r.Score,
			Meta:  r.Meta,
		}
	}

	return &Answer{Text: text, Sources: sources}, nil
}
