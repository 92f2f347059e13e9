package indexer

// Node is a contiguous span of document text plus attached metadata, the unit
// of retrieval. Nodes are immutable once upserted into the vector store.
type Node struct {
	Text string
	Meta map[string]any // file_name, page_label, category, year
}
