package llm

import (
	"errors"
	"strings"
)

// ErrEmptyResponse is returned when a provider produced no text
var ErrEmptyResponse = errors.New("empty response from model")

// ErrQuotaExceeded marks provider errors caused by rate or quota limits
var ErrQuotaExceeded = errors.New("model quota exceeded")

// IsQuotaError reports whether err came from a rate or quota limit.
// Vendor SDK errors are matched on their message.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrQuotaExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "rate limit")
}
