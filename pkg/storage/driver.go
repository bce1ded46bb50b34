// Package storage persists invocation records produced by the gateway.
package storage

import (
	"context"
)

const (
	// DefaultListLimit is the number of records returned when no limit is set.
	DefaultListLimit = 50

	// MaxListLimit caps the number of records a single List call returns.
	MaxListLimit = 500
)

// Driver defines the interface for persisting and retrieving invocation
// records in a storage backend.
type Driver interface {
	// Put stores a record. Records are immutable; storing a record whose ID
	// already exists is an error.
	Put(ctx context.Context, record *Record) error

	// Get retrieves a record by its ID.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns records, most recently started first.
	List(ctx context.Context, opts ListOptions) ([]*Record, error)

	// Stats aggregates every stored record.
	Stats(ctx context.Context) (*Stats, error)

	// Close closes the store and releases any resources.
	Close() error
}

// ListOptions filters a List call.
type ListOptions struct {
	// Action restricts results to a single action. Empty matches all.
	Action string

	// Limit bounds the number of results. Zero means DefaultListLimit.
	Limit int
}

// EffectiveLimit returns the limit clamped to (0, MaxListLimit].
func (o ListOptions) EffectiveLimit() int {
	switch {
	case o.Limit <= 0:
		return DefaultListLimit
	case o.Limit > MaxListLimit:
		return MaxListLimit
	default:
		return o.Limit
	}
}
