package llm

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsQuotaError(t *testing.T) {
	tests := []struct {
		err    error
		expect bool
	}{
		{nil, false},
		{errors.New("boom"), false},
		{fmt.Errorf("gemini: %w", ErrQuotaExceeded), true},
		{errors.New("Error 429, Message: Resource has been exhausted"), true},
		{errors.New("You exceeded your current Quota"), true},
		{errors.New("RESOURCE_EXHAUSTED"), true},
		{errors.New("rate limit reached"), true},
	}

	for _, tt := range tests {
		if got := IsQuotaError(tt.err); got != tt.expect {
			t.Errorf("IsQuotaError(%v) = %v, want %v", tt.err, got, tt.expect)
		}
	}
}
