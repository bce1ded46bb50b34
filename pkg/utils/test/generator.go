package testutils

import (
	"context"
	"sync"

	"github.com/papercomputeco/venyro/pkg/llm"
)

// MockGenerator is a test llm.Generator that replays scripted responses and
// records every request it receives.
type MockGenerator struct {
	mu sync.Mutex

	// Responses are returned in call order. The last one repeats once exhausted.
	Responses []string

	// Errors, when the entry for a call is non-nil, is returned instead of the
	// response for that call.
	Errors []error

	requests []*llm.GenerateRequest
}

// NewMockGenerator returns a generator that always answers with responses.
func NewMockGenerator(responses ...string) *MockGenerator {
	return &MockGenerator{Responses: responses}
}

func (m *MockGenerator) GenerateJSON(_ context.Context, req *llm.GenerateRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := len(m.requests)
	m.requests = append(m.requests, req)

	if i < len(m.Errors) && m.Errors[i] != nil {
		return "", m.Errors[i]
	}

	switch {
	case len(m.Responses) == 0:
		return "{}", nil
	case i < len(m.Responses):
		return m.Responses[i], nil
	default:
		return m.Responses[len(m.Responses)-1], nil
	}
}

// Requests returns the requests received so far.
func (m *MockGenerator) Requests() []*llm.GenerateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*llm.GenerateRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// Calls returns the number of GenerateJSON calls made.
func (m *MockGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}
