package llm

import "strings"

// Role tags the speaker of a conversation turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Valid reports whether r is one of the roles the provider accepts.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleModel
}

// Part is a single text fragment within a turn.
type Part struct {
	Text string `json:"text"`
}

// Turn is one message of a conversation history, in the same shape the
// client sends it: {"role": "user", "parts": [{"text": "..."}]}.
type Turn struct {
	Role  Role   `json:"role"`
	Parts []Part `json:"parts"`
}

// NewTextTurn creates a single-part turn for the given role.
func NewTextTurn(role Role, text string) Turn {
	return Turn{
		Role:  role,
		Parts: []Part{{Text: text}},
	}
}

// Text returns the concatenated text of all parts in the turn.
func (t Turn) Text() string {
	var b strings.Builder
	for _, p := range t.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}
