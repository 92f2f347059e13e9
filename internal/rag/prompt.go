package rag

import (
	"fmt"
	"strings"

	"campusdocs-ai/internal/vectorstore"
)

// systemPrompt pins the model to the retrieved context. The "could not find"
// wording is deliberate: the UI and tests rely on the model refusing instead
// of guessing when the context is insufficient.
const systemPrompt = `You are an assistant helping university students with questions about official campus documents (regulations, curricula, schedules and guides).

Answer using ONLY the context information below, never prior knowledge.

Rules:
- If the context does not contain the answer, reply: "I could not find this information in the available documents." Do not guess and do not invent document names.
- Support every statement with a citation of the source, in the form (file_name, page page_label).
- Answer in the language the question was asked in.
- Be concise and factual.`

// buildContext renders retrieved chunks into the context block appended to the
// system prompt. Each chunk is prefixed with the metadata the model needs for
// citations.
func buildContext(results []vectorstore.SearchResult) string {
	var b strings.Builder
	b.WriteString("Context information is below.\n")
	b.WriteString("---------------------\n")
	for _, r := range results {
		fmt.Fprintf(&b, "[file_name: %v, page_label: %v]\n%v\n\n", r.Meta["file_name"], r.Meta["page_label"], r.Meta["text"])
	}
	b.WriteString("---------------------")
	return b.String()
}
