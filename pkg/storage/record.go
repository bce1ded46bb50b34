package storage

import (
	"encoding/json"
	"time"
)

// Status is the outcome of an invocation.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Record describes a single gateway invocation.
type Record struct {
	ID     string `json:"id"`
	Action string `json:"action"`
	Model  string `json:"model"`
	Status Status `json:"status"`

	// HTTPStatus is the status code returned to the caller.
	HTTPStatus int `json:"http_status"`

	// ErrorKind classifies failures (e.g. "provider_overloaded"). Empty on success.
	ErrorKind string `json:"error_kind,omitempty"`

	// Error is the message returned to the caller. Empty on success.
	Error string `json:"error,omitempty"`

	Attempts     int `json:"attempts"`
	HistoryTurns int `json:"history_turns"`

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMs  int64     `json:"duration_ms"`

	// Result is the JSON returned to the caller on success.
	Result json.RawMessage `json:"result,omitempty"`
}

// Stats aggregates stored records.
type Stats struct {
	Total        int            `json:"total"`
	ByAction     map[string]int `json:"by_action"`
	ByStatus     map[string]int `json:"by_status"`
	MeanAttempts float64        `json:"mean_attempts"`

	attempts int
}

// NewStats returns empty Stats.
func NewStats() *Stats {
	return &Stats{
		ByAction: make(map[string]int),
		ByStatus: make(map[string]int),
	}
}

// Add folds count records with the given action and status, which together
// made attempts provider calls, into s.
func (s *Stats) Add(action string, status Status, count, attempts int) {
	if count <= 0 {
		return
	}

	s.Total += count
	s.ByAction[action] += count
	s.ByStatus[string(status)] += count
	s.attempts += attempts
	s.MeanAttempts = float64(s.attempts) / float64(s.Total)
}
