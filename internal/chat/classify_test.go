package chat

import (
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{
			name: "nil error",
			err:  nil,
			want: KindOther,
		},
		{
			name: "http 429",
			err:  errors.New("chat completion failed with status 429: Too Many Requests"),
			want: KindRateLimit,
		},
		{
			name: "per minute rate limit",
			err:  errors.New("chat completion failed with status 429: Rate limit reached for model on tokens per minute (TPM)"),
			want: KindRateLimit,
		},
		{
			name: "resource exhausted",
			err:  errors.New("rpc error: code = ResourceExhausted desc = RESOURCE_EXHAUSTED"),
			want: KindRateLimit,
		},
		{
			name: "daily token quota wins over rate limit wording",
			err:  errors.New("chat completion failed with status 429: Rate limit reached for model on tokens per day (TPD): limit 100000, used 100000"),
			want: KindDailyQuota,
		},
		{
			name: "daily request quota",
			err:  errors.New("chat completion failed with status 429: you have exceeded your daily request allowance (RPD)"),
			want: KindDailyQuota,
		},
		{
			name: "context length exceeded",
			err:  errors.New("chat completion failed with status 400: context_length_exceeded"),
			want: KindContextOverflow,
		},
		{
			name: "reduce the length",
			err:  errors.New("chat completion failed with status 400: Please reduce the length of the messages or completion"),
			want: KindContextOverflow,
		},
		{
			name: "negative context window",
			err:  errors.New("calculated available context size -512 was not non-negative"),
			want: KindContextOverflow,
		},
		{
			name: "unrelated negative wording stays other",
			err:  errors.New("chat completion failed with status 403: your account balance is negative"),
			want: KindOther,
		},
		{
			name: "server error",
			err:  errors.New("chat completion failed with status 500: internal server error"),
			want: KindOther,
		},
		{
			name: "network error",
			err:  errors.New("dial tcp: connection refused"),
			want: KindOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}
