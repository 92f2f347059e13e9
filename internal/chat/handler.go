package chat

import (
	"context"
	"fmt"
	"time"

	"campusdocs-ai/internal/contextutil"
	"campusdocs-ai/internal/llm"
	"campusdocs-ai/internal/rag"
)

// User-facing terminal messages.
const (
	msgServerBusy    = "The server is busy right now. Please try again in a few minutes."
	msgQuotaAllGone  = "The daily quota of all available models is exhausted. Please try again tomorrow."
	msgTooLong       = "The conversation is too long for the model. Please start a new chat."
	maxErrDisplayLen = 200
)

// Citation points an answer at its source chunk. Score is pre-formatted for
// display: a whole percentage, or "N/A" when the store returned no score.
type Citation struct {
	FileName  string `json:"file_name"`
	PageLabel string `json:"page_label"`
	Category  string `json:"category"`
	Score     string `json:"score"`
	Snippet   string `json:"snippet"`
}

// Result is the terminal outcome of processing one query. Exactly one of
// Answer and ErrorMessage is set. Alternatives is only set alongside a daily
// quota error when other models remain selectable.
type Result struct {
	Answer       string
	Sources      []Citation
	ErrorMessage string
	Alternatives []ModelDescriptor
}

// Handler drives a query through the RAG engine and absorbs provider
// failures: transient rate limits switch to unused fallback models first and
// only then back off and retry, daily quota offers the remaining models to
// the user, and a context overflow buys one silent retry with cleared memory.
type Handler struct {
	engine     rag.Engine
	maxRetries int
	retryBase  time.Duration
	topSources int

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

// NewHandler creates a chat handler.
func NewHandler(engine rag.Engine, maxRetries int, retryBase time.Duration, topSources int) *Handler {
	return &Handler{
		engine:     engine,
		maxRetries: maxRetries,
		retryBase:  retryBase,
		topSources: topSources,
		sleep:      time.Sleep,
	}
}

// Process answers one query within a session. An empty query resumes the
// session's pending query, if any. A non-empty model switches the session to
// that model before processing. The caller must hold the session lock.
func (h *Handler) Process(ctx context.Context, sess *Session, query, model string) Result {
	logger := contextutil.LoggerFromContext(ctx)

	if model != "" {
		sess.SetActiveModel(model)
	}
	if query == "" {
		query = sess.TakePending()
	}
	if query == "" {
		return Result{ErrorMessage: "Please enter a question."}
	}

	active := sess.ActiveModel()
	tried := map[string]bool{active: true}
	retryCount := 0
	rateLimited := false
	clearedMemory := false

	for {
		answer, err := h.engine.Ask(ctx, query, active, sess.History())
		if err == nil {
			sess.SetActiveModel(active)
			cited := h.citations(answer.Sources)
			sess.Append(llm.RoleUser, query, nil)
			sess.Append(llm.RoleAssistant, answer.Text, cited)
			return Result{Answer: answer.Text, Sources: cited}
		}

		kind := Classify(err)
		logger.WarnContext(ctx, "llm call failed", "kind", kind.String(), "model", active, "error", err)

		switch kind {
		case KindRateLimit:
			rateLimited = true
			if next, ok := nextFallback(tried); ok {
				logger.InfoContext(ctx, "rate limited, switching model", "from", active, "to", next.ID)
				active = next.ID
				tried[next.ID] = true
				continue
			}
			retryCount++
			if retryCount >= h.maxRetries {
				return Result{ErrorMessage: msgServerBusy}
			}
			wait := h.retryBase * time.Duration(retryCount)
			logger.InfoContext(ctx, "all models rate limited, backing off", "wait", wait, "attempt", retryCount)
			h.sleep(wait)

		case KindDailyQuota:
			return h.quotaResult(sess, query, active, tried)

		case KindContextOverflow:
			// A rate limit earlier in this turn means the overflow is the
			// provider shrinking the usable window, not our history growing.
			if rateLimited {
				return h.quotaResult(sess, query, active, tried)
			}
			if !clearedMemory {
				logger.InfoContext(ctx, "context overflow, clearing conversation memory for one retry")
				sess.Clear()
				clearedMemory = true
				continue
			}
			return Result{ErrorMessage: msgTooLong}

		default:
			return Result{ErrorMessage: "An unexpected error occurred: " + truncate(err.Error(), maxErrDisplayLen)}
		}
	}
}

// quotaResult offers the untried models as alternatives, or reports full
// exhaustion when none remain. The query is parked so the user's model choice
// can resume it.
func (h *Handler) quotaResult(sess *Session, query, active string, tried map[string]bool) Result {
	var alternatives []ModelDescriptor
	for _, m := range FallbackModels {
		if !tried[m.ID] {
			alternatives = append(alternatives, m)
		}
	}
	if len(alternatives) == 0 {
		return Result{ErrorMessage: msgQuotaAllGone}
	}

	sess.SetPending(query, alternatives)
	return Result{
		ErrorMessage: fmt.Sprintf("The daily quota of %s is exhausted. Pick one of the alternative models to continue.", Describe(active)),
		Alternatives: alternatives,
	}
}

// citations extracts the top sources for display.
func (h *Handler) citations(sources []rag.ScoredNode) []Citation {
	n := h.topSources
	if n > len(sources) {
		n = len(sources)
	}
	cited := make([]Citation, 0, n)
	for _, src := range sources[:n] {
		fileName, _ := src.Meta["file_name"].(string)
		pageLabel, _ := src.Meta["page_label"].(string)
		category, _ := src.Meta["category"].(string)
		cited = append(cited, Citation{
			FileName:  fileName,
			PageLabel: pageLabel,
			Category:  category,
			Score:     FormatScore(src.Score),
			Snippet:   truncate(src.Text, 300),
		})
	}
	return cited
}

// nextFallback returns the first fallback model not yet tried this turn.
func nextFallback(tried map[string]bool) (ModelDescriptor, bool) {
	for _, m := range FallbackModels {
		if !tried[m.ID] {
			return m, true
		}
	}
	return ModelDescriptor{}, false
}

// FormatScore renders a similarity score as a whole percentage, or "N/A"
// when the score is missing.
func FormatScore(score *float32) string {
	if score == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.0f%%", *score*100)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
