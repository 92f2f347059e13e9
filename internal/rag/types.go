package rag

// ScoredNode is one retrieved chunk with its similarity score, best first.
// Score is nil when the vector store omits it.
type ScoredNode struct {
	Text  string
	Score *float32
	Meta  map[string]any
}

// Answer is the engine output: the generated text plus the retrieved sources
// that grounded it.
type Answer struct {
	Text    string
	Sources []ScoredNode
}
