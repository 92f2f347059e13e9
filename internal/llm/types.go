package llm

// Message represents a single message in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Message roles understood by the chat completions API.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatParams holds per-request parameters for chat completion requests.
type ChatParams struct {
	// Model overrides the client's default model. The retry handler uses this
	// to switch to a fallback model without rebuilding the client.
	Model string

	// MaxTokens caps the number of generated tokens. Zero means no cap.
	MaxTokens int

	// Temperature controls the randomness of the output.
	Temperature float32
}
