package indexer

// Tier sizes for the hierarchical splitter, in runes. Only leaf chunks from
// the smallest tier are indexed; the coarser tiers exist to keep leaf
// boundaries aligned with larger structural units of the document.
var DefaultTierSizes = []int{8192, 2048, 768}

// HierarchicalSplitter splits text through successively smaller tiers and
// returns the chunks of the smallest tier.
type HierarchicalSplitter struct {
	Sizes []int
}

// NewHierarchicalSplitter creates a splitter with the default tier sizes.
func NewHierarchicalSplitter() *HierarchicalSplitter {
	return &HierarchicalSplitter{Sizes: DefaultTierSizes}
}

// Leaves splits text down through every tier and returns the leaf chunks.
func (h *HierarchicalSplitter) Leaves(text string) []string {
	parts := []string{text}
	for _, size := range h.Sizes {
		splitter := &SentenceSplitter{ChunkSize: size, Overlap: 0}
		var next []string
		for _, part := range parts {
			next = append(next, splitter.Split(part)...)
		}
		parts = next
	}
	return parts
}
