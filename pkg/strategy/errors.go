package strategy

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPayload is returned when the caller's payload cannot be used to
	// build a prompt for the requested action.
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrInvalidOutput is the parent of every failure caused by provider output
	// that does not honor the declared response contract.
	ErrInvalidOutput = errors.New("invalid provider output")

	// ErrMalformedOutput is returned when the provider's text is not valid JSON.
	ErrMalformedOutput = fmt.Errorf("%w: malformed JSON", ErrInvalidOutput)

	// ErrContractViolation is returned when the provider's JSON is missing a
	// required field or has a field of the wrong type.
	ErrContractViolation = fmt.Errorf("%w: contract violation", ErrInvalidOutput)
)

// UnsupportedActionError is returned for action names outside the supported set.
type UnsupportedActionError struct {
	Name string
}

func (e *UnsupportedActionError) Error() string {
	return "unsupported action: " + e.Name
}
