package gateway

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/papercomputeco/venyro/pkg/llm"
	"github.com/papercomputeco/venyro/pkg/retry"
	"github.com/papercomputeco/venyro/pkg/strategy"
)

// Caller-facing messages.
const (
	msgMissingCredentials = "Server configuration error: the AI provider API key is not set."
	msgInvalidBody        = "Invalid request body: expected a JSON object with an action."
	msgHighLoad           = "The AI model is currently experiencing high load. Please try again in a few moments."
	msgInvalidOutput      = "The AI returned a response that could not be understood. Please try again."
	msgTimeout            = "The request took too long to complete. Please try again."
	msgGeneric            = "An unexpected error occurred while generating content. Please try again."
)

// Error kinds recorded with each failed invocation.
const (
	kindConfiguration     = "configuration"
	kindInvalidRequest    = "invalid_request"
	kindUnsupportedAction = "unsupported_action"
	kindInvalidPayload    = "invalid_payload"
	kindOverloaded        = "provider_overloaded"
	kindMalformedOutput   = "malformed_output"
	kindContractViolation = "contract_violation"
	kindTimeout           = "timeout"
	kindProvider          = "provider_error"
	kindInternal          = "internal"
)

// failure is an error normalized for the caller.
type failure struct {
	status  int
	kind    string
	message string
}

// normalize converts an action error into the status, kind, and message sent
// to the caller. Overload errors become the high-load notice, provider
// messages pass through, and anything else gets a generic message.
func normalize(err error) failure {
	var unsupported *strategy.UnsupportedActionError

	switch {
	case errors.As(err, &unsupported):
		return failure{http.StatusBadRequest, kindUnsupportedAction, "Unsupported action: " + unsupported.Name}

	case errors.Is(err, strategy.ErrInvalidPayload):
		return failure{http.StatusBadRequest, kindInvalidPayload, err.Error()}

	case errors.Is(err, llm.ErrMissingCredentials):
		return failure{http.StatusInternalServerError, kindConfiguration, msgMissingCredentials}

	case retry.IsRetryable(err):
		return failure{http.StatusInternalServerError, kindOverloaded, msgHighLoad}

	case errors.Is(err, strategy.ErrMalformedOutput):
		return failure{http.StatusInternalServerError, kindMalformedOutput, msgInvalidOutput}

	case errors.Is(err, strategy.ErrContractViolation):
		return failure{http.StatusInternalServerError, kindContractViolation, msgInvalidOutput}

	case errors.Is(err, context.DeadlineExceeded):
		return failure{http.StatusInternalServerError, kindTimeout, msgTimeout}
	}

	if pe, ok := llm.AsProviderError(err); ok && strings.TrimSpace(pe.Message) != "" {
		return failure{http.StatusInternalServerError, kindProvider, pe.Message}
	}

	return failure{http.StatusInternalServerError, kindInternal, msgGeneric}
}
