package chat

// ModelDescriptor describes a selectable chat model. TPMLimit is the
// provider's tokens-per-minute ceiling, shown to users when offering
// alternatives; it is never enforced locally.
type ModelDescriptor struct {
	ID          string `json:"id"`
	TPMLimit    int    `json:"tpm_limit"`
	Description string `json:"description"`
}

// DefaultModel is the primary chat model every session starts on.
const DefaultModel = "llama-3.3-70b-versatile"

// PrimaryModel describes the default model.
var PrimaryModel = ModelDescriptor{
	ID:          DefaultModel,
	TPMLimit:    12000,
	Description: "Llama 3.3 70B",
}

// FallbackModels are tried in priority order when the active model is rate
// limited or out of daily quota.
var FallbackModels = []ModelDescriptor{
	{ID: "meta-llama/llama-4-scout-17b-16e-instruct", TPMLimit: 30000, Description: "Llama 4 Scout"},
	{ID: "llama-3.1-8b-instant", TPMLimit: 6000, Description: "Llama 3.1 8B"},
}

// Describe returns the human-readable name for a model ID, falling back to
// the ID itself for unknown models.
func Describe(id string) string {
	if id == PrimaryModel.ID {
		return PrimaryModel.Description
	}
	for _, m := range FallbackModels {
		if m.ID == id {
			return m.Description
		}
	}
	return id
}
