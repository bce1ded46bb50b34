package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredentials is returned when no provider API key is configured.
	ErrMissingCredentials = errors.New("provider API key is not configured")

	// ErrEmptyResponse is returned when the provider answers without any text.
	ErrEmptyResponse = errors.New("provider returned an empty response")

	// ErrInvalidHistory is returned when a conversation history cannot be replayed.
	ErrInvalidHistory = errors.New("invalid conversation history")
)

// ProviderError is a normalized failure reported by an upstream LLM provider.
type ProviderError struct {
	// StatusCode is the HTTP-equivalent status code (e.g. 429, 503).
	StatusCode int

	// Status is the provider's status string (e.g. "UNAVAILABLE"), if any.
	Status string

	// Message is the provider's human readable message.
	Message string
}

func (e *ProviderError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("provider error %d (%s): %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("provider error %d: %s", e.StatusCode, e.Message)
}

// AsProviderError unwraps err into a *ProviderError if one is in its chain.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// ErrorResponse is the single-shape error body returned by Venyro servers.
type ErrorResponse struct {
	Error string `json:"error"`
}
