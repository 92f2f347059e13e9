package chat

import "strings"

// Kind classifies an LLM provider failure. Providers only expose failure
// detail in the response body text, so classification is substring matching
// over the error message.
type Kind int

const (
	// KindOther is any failure without a recovery policy.
	KindOther Kind = iota
	// KindRateLimit is a transient per-minute throttle. Recoverable by
	// switching models or backing off.
	KindRateLimit
	// KindDailyQuota is an exhausted per-day budget. Not recoverable by
	// waiting within the session.
	KindDailyQuota
	// KindContextOverflow means the accumulated conversation no longer fits
	// the model context window.
	KindContextOverflow
)

func (k Kind) String() string {
	switch k {
	case KindRateLimit:
		return "rate_limit"
	case KindDailyQuota:
		return "daily_quota"
	case KindContextOverflow:
		return "context_overflow"
	default:
		return "other"
	}
}

var (
	overflowMarkers = []string{"context_length_exceeded", "reduce the length", "non-negative", "context size"}
	dailyMarkers    = []string{"daily", "per day", "tpd", "rpd"}
	rateMarkers     = []string{"429", "resource_exhausted", "rate limit", "rate_limit", "too many requests"}
)

// Classify maps a provider error onto a Kind. Daily quota markers are checked
// before generic rate limit markers because quota messages usually contain
// both.
func Classify(err error) Kind {
	if err == nil {
		return KindOther
	}
	msg := strings.ToLower(err.Error())

	for _, m := range overflowMarkers {
		if strings.Contains(msg, m) {
			return KindContextOverflow
		}
	}
	for _, m := range dailyMarkers {
		if strings.Contains(msg, m) {
			return KindDailyQuota
		}
	}
	for _, m := range rateMarkers {
		if strings.Contains(msg, m) {
			return KindRateLimit
		}
	}
	return KindOther
}
