// Package strategy builds the prompts and response schemas for each gateway
// action and executes them against an llm.Generator.
package strategy

import "fmt"

// Action is a named gateway operation. The set is closed.
type Action int

const (
	RegistrationStep Action = iota + 1
	InferStrategy
	GenerateStrategy
	GenerateBlueprint
	RefineBlueprint
	ChatWithStrategy
)

var actionNames = map[Action]string{
	RegistrationStep:  "registrationStep",
	InferStrategy:     "inferStrategy",
	GenerateStrategy:  "generateStrategy",
	GenerateBlueprint: "generateBlueprint",
	RefineBlueprint:   "refineBlueprint",
	ChatWithStrategy:  "chatWithStrategy",
}

// Actions returns every supported action in declaration order.
func Actions() []Action {
	return []Action{
		RegistrationStep,
		InferStrategy,
		GenerateStrategy,
		GenerateBlueprint,
		RefineBlueprint,
		ChatWithStrategy,
	}
}

// ParseAction converts the wire name of an action into an Action.
func ParseAction(name string) (Action, error) {
	for _, a := range Actions() {
		if actionNames[a] == name {
			return a, nil
		}
	}
	return 0, &UnsupportedActionError{Name: name}
}

// String returns the wire name of the action.
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// ReplaysHistory reports whether the action forwards the caller's conversation
// history as the full request content instead of building a prompt.
func (a Action) ReplaysHistory() bool {
	return a == RefineBlueprint || a == ChatWithStrategy
}
