// Package llm defines the provider-agnostic conversation types and the
// generation contract used by the gateway.
package llm

import (
	"context"

	"google.golang.org/genai"
)

// GenerateRequest is a single schema-constrained generation call.
type GenerateRequest struct {
	// Model is the provider model name (e.g. "gemini-2.5-flash").
	Model string

	// Contents is the full request content: either a single user prompt or a
	// replayed conversation history.
	Contents []Turn

	// SystemInstruction is optional framing sent outside of Contents.
	SystemInstruction string

	// Schema is the response schema the provider must conform to.
	Schema *genai.Schema
}

// Generator issues schema-constrained generation calls against an LLM provider
// and returns the raw text of the response, which is expected to be JSON.
type Generator interface {
	GenerateJSON(ctx context.Context, req *GenerateRequest) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req *GenerateRequest) (string, error)

// GenerateJSON calls f(ctx, req).
func (f GeneratorFunc) GenerateJSON(ctx context.Context, req *GenerateRequest) (string, error) {
	return f(ctx, req)
}
