package indexer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Defaults for the simple chunking mode. Sizes are measured in runes.
const (
	DefaultChunkSize = 1024
	DefaultOverlap   = 200
)

// SentenceSplitter splits text into fixed-size chunks along sentence
// boundaries, with a configurable overlap carried between adjacent chunks.
type SentenceSplitter struct {
	ChunkSize int // max runes per chunk
	Overlap   int // runes of trailing context repeated at the start of the next chunk
}

// NewSentenceSplitter creates a splitter with the default chunk size and overlap.
func NewSentenceSplitter() *SentenceSplitter {
	return &SentenceSplitter{
		ChunkSize: DefaultChunkSize,
		Overlap:   DefaultOverlap,
	}
}

// Split splits text into chunks of at most ChunkSize runes.
// Sentences are kept intact where possible; a single sentence longer than
// ChunkSize is hard-split. Empty input yields no chunks.
func (s *SentenceSplitter) Split(text string) []string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, strings.Join(current, " "))

		// Carry trailing sentences into the next chunk as overlap.
		var overlap []string
		overlapLen := 0
		for i := len(current) - 1; i >= 0; i-- {
			l := utf8.RuneCountInString(current[i])
			if overlapLen+l > s.Overlap {
				break
			}
			overlap = append([]string{current[i]}, overlap...)
			overlapLen += l
		}
		current = overlap
		currentLen = overlapLen
	}

	for _, sentence := range sentences {
		length := utf8.RuneCountInString(sentence)

		if length > s.ChunkSize {
			flush()
			current = nil
			currentLen = 0
			chunks = append(chunks, hardSplit(sentence, s.ChunkSize)...)
			continue
		}

		if currentLen+length > s.ChunkSize && currentLen > 0 {
			flush()
		}
		current = append(current, sentence)
		currentLen += length
	}

	if len(current) > 0 && currentLen > 0 {
		// Only emit the trailing chunk if it contains more than carried overlap.
		tail := strings.Join(current, " ")
		if len(chunks) == 0 || !strings.HasSuffix(chunks[len(chunks)-1], tail) {
			chunks = append(chunks, tail)
		}
	}

	return chunks
}

// hardSplit cuts an oversized sentence into pieces of at most size runes.
func hardSplit(text string, size int) []string {
	runes := []rune(text)
	var pieces []string
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		pieces = append(pieces, string(runes[start:end]))
	}
	return pieces
}

// splitSentences splits text into sentences. The boundary rules are
// deliberately simple: a terminator (., !, ?) followed by whitespace, or a
// newline. PDF-extracted text carries hard line breaks, so newlines are
// treated as boundaries rather than joined.
func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		b.WriteRune(r)

		boundary := false
		switch r {
		case '\n':
			boundary = true
		case '.', '!', '?':
			boundary = i+1 >= len(runes) || unicode.IsSpace(runes[i+1])
		}

		if boundary {
			if s := strings.TrimSpace(b.String()); s != "" {
				sentences = append(sentences, s)
			}
			b.Reset()
		}
	}

	if s := strings.TrimSpace(b.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
