package llm

import (
	"fmt"
	"strings"
)

// DefaultMaxHistoryTurns bounds how many turns are replayed to the provider
// when no explicit policy is configured.
const DefaultMaxHistoryTurns = 50

// HistoryPolicy governs how a caller supplied conversation is replayed.
type HistoryPolicy struct {
	// MaxTurns is the maximum number of turns kept. Older turns are dropped
	// first. Zero means DefaultMaxHistoryTurns.
	MaxTurns int
}

// Apply validates history and returns the slice that should be sent upstream.
// The returned history always starts with a user turn. The input slice is not
// modified.
func (p HistoryPolicy) Apply(history []Turn) ([]Turn, error) {
	if len(history) == 0 {
		return nil, fmt.Errorf("%w: conversation history is empty", ErrInvalidHistory)
	}

	for i, turn := range history {
		if !turn.Role.Valid() {
			return nil, fmt.Errorf("%w: turn %d has unsupported role %q", ErrInvalidHistory, i, turn.Role)
		}
		if strings.TrimSpace(turn.Text()) == "" {
			return nil, fmt.Errorf("%w: turn %d has no text", ErrInvalidHistory, i)
		}
	}

	maxTurns := p.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxHistoryTurns
	}

	start := 0
	if len(history) > maxTurns {
		start = len(history) - maxTurns
	}
	for start < len(history) && history[start].Role != RoleUser {
		start++
	}
	if start == len(history) {
		return nil, fmt.Errorf("%w: no user turn within the last %d turns", ErrInvalidHistory, maxTurns)
	}

	kept := make([]Turn, len(history)-start)
	copy(kept, history[start:])
	return kept, nil
}
