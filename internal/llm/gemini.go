package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiEmbedder generates text embeddings with the Gemini API.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
	dim    int
}

// NewGeminiEmbedder creates an embeddings client for the given model.
// dim is the expected output vector width; every returned embedding is
// validated against it so a model/collection mismatch fails loudly instead of
// corrupting the index.
func NewGeminiEmbedder(ctx context.Context, apiKey, model string, dim int) (*GeminiEmbedder, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiEmbedder{
		client: client,
		model:  model,
		dim:    dim,
	}, nil
}

// EmbedTexts generates embeddings for the given texts, one vector per input.
func (e *GeminiEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	dim := int32(e.dim)
	resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &dim,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to embed content: %w", err)
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}

	result := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("empty embedding at index %d", i)
		}
		if len(emb.Values) != e.dim {
			return nil, fmt.Errorf("embedding %d has size %d, expected %d", i, len(emb.Values), e.dim)
		}
		result[i] = emb.Values
	}

	return result, nil
}
