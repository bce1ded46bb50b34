package retry

import (
	"net/http"
	"strings"

	"github.com/papercomputeco/venyro/pkg/llm"
)

// IsRetryable reports whether err is a transient provider overload: a status
// of 503 or 429, or a message mentioning "overloaded" in any case.
//
// The substring match depends on provider wording and may need revisiting if
// the provider changes its messages.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if pe, ok := llm.AsProviderError(err); ok {
		switch pe.StatusCode {
		case http.StatusServiceUnavailable, http.StatusTooManyRequests:
			return true
		}
	}

	return strings.Contains(strings.ToLower(err.Error()), "overloaded")
}
