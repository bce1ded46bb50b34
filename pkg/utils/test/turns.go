package testutils

import "github.com/papercomputeco/venyro/pkg/llm"

// NewTestHistory builds an alternating user/model conversation from texts,
// starting with a user turn.
func NewTestHistory(texts ...string) []llm.Turn {
	history := make([]llm.Turn, 0, len(texts))
	for i, text := range texts {
		role := llm.RoleUser
		if i%2 == 1 {
			role = llm.RoleModel
		}
		history = append(history, llm.NewTextTurn(role, text))
	}
	return history
}
