package indexer

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks campusdocs-ai/internal/indexer Embedder

import (
	"context"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"campusdocs-ai/internal/contextutil"
)

const (
	// Chunks at or below this length are left alone.
	refineMinLen = 600
	// Policy-style chunks below this length are kept intact to avoid
	// splitting a rule away from its exceptions.
	policyMaxLen = 1000
	// Percentile of adjacent-sentence distances used as the breakpoint
	// threshold.
	breakpointPercentile = 95
)

// policyKeywords mark normative text whose sentences must stay together.
var policyKeywords = []string{
	"must", "shall", "required", "prohibited", "exempt",
	"does not apply", "terms", "conditions", "regulation", "except",
}

// Embedder produces one embedding vector per input text.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// SemanticRefiner re-splits long chunks at points where the topic shifts,
// measured as embedding distance between adjacent sentences. Structural and
// normative chunks are protected by guardrails and never subdivided.
type SemanticRefiner struct {
	embedder Embedder
	markdown goldmark.Markdown
}

// NewSemanticRefiner creates a refiner backed by the given embedder.
func NewSemanticRefiner(embedder Embedder) *SemanticRefiner {
	return &SemanticRefiner{
		embedder: embedder,
		markdown: goldmark.New(goldmark.WithExtensions(extension.Table)),
	}
}

// Refine returns the input nodes with eligible ones replaced by their
// semantic sub-chunks. Node order is preserved and metadata is carried onto
// every sub-chunk. Refinement never drops text: on any error or degenerate
// split the original node is kept.
func (r *SemanticRefiner) Refine(ctx context.Context, nodes []Node) []Node {
	logger := contextutil.LoggerFromContext(ctx)

	var out []Node
	var kept, split int
	for _, node := range nodes {
		if !r.eligible(node.Text) {
			out = append(out, node)
			kept++
			continue
		}

		pieces, err := r.splitSemantic(ctx, node.Text)
		if err != nil {
			logger.Warn("semantic split failed, keeping original chunk", "error", err)
			out = append(out, node)
			kept++
			continue
		}
		if len(pieces) <= 1 {
			out = append(out, node)
			kept++
			continue
		}

		for _, piece := range pieces {
			out = append(out, Node{Text: piece, Meta: node.Meta})
		}
		split++
	}

	logger.Info("semantic refinement complete", "input", len(nodes), "kept", kept, "split", split, "output", len(out))
	return out
}

// eligible reports whether a chunk may be subdivided. The guardrails are
// checked in order: tables and heading-led chunks are structural and always
// kept, short policy text is kept whole, and only long chunks are worth
// re-splitting at all.
func (r *SemanticRefiner) eligible(chunk string) bool {
	if r.containsTable(chunk) {
		return false
	}
	if r.startsWithHeading(chunk) {
		return false
	}
	length := utf8.RuneCountInString(chunk)
	if containsPolicyKeyword(chunk) && length < policyMaxLen {
		return false
	}
	return length > refineMinLen
}

// containsTable reports whether the chunk parses to any markdown table node.
func (r *SemanticRefiner) containsTable(chunk string) bool {
	doc := r.markdown.Parser().Parse(text.NewReader([]byte(chunk)))

	found := false
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if strings.Contains(n.Kind().String(), "Table") {
			found = true
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return found
}

// startsWithHeading reports whether the chunk opens with a markdown heading.
func (r *SemanticRefiner) startsWithHeading(chunk string) bool {
	doc := r.markdown.Parser().Parse(text.NewReader([]byte(strings.TrimSpace(chunk))))
	first := doc.FirstChild()
	return first != nil && first.Kind() == ast.KindHeading
}

func containsPolicyKeyword(chunk string) bool {
	lower := strings.ToLower(chunk)
	for _, kw := range policyKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// splitSemantic splits the chunk at sentence boundaries where the embedding
// distance between adjacent sentences exceeds the breakpoint percentile.
func (r *SemanticRefiner) splitSemantic(ctx context.Context, chunk string) ([]string, error) {
	sentences := splitSentences(chunk)
	if len(sentences) < 3 {
		return nil, nil
	}

	vectors, err := r.embedder.EmbedTexts(ctx, sentences)
	if err != nil {
		return nil, err
	}

	distances := make([]float64, len(vectors)-1)
	for i := 0; i < len(vectors)-1; i++ {
		distances[i] = 1 - cosineSimilarity(vectors[i], vectors[i+1])
	}

	threshold := percentile(distances, breakpointPercentile)

	var pieces []string
	var current []string
	for i, sentence := range sentences {
		current = append(current, sentence)
		if i < len(distances) && distances[i] > threshold {
			pieces = append(pieces, strings.Join(current, " "))
			current = nil
		}
	}
	if len(current) > 0 {
		pieces = append(pieces, strings.Join(current, " "))
	}

	return pieces, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// percentile returns the p-th percentile of values with linear interpolation
// between closest ranks.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	pos := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if upper >= len(sorted) {
		upper = len(sorted) - 1
	}
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
