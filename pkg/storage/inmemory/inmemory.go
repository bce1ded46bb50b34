// Package inmemory provides a map-backed storage driver.
package inmemory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/papercomputeco/venyro/pkg/storage"
)

// Driver implements storage.Driver using an in-memory map.
type Driver struct {
	// mu guards records
	mu sync.RWMutex

	// records is keyed by record ID
	records map[string]*storage.Record
}

// NewDriver creates a new in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		records: make(map[string]*storage.Record),
	}
}

// Put stores a copy of record.
func (d *Driver) Put(_ context.Context, record *storage.Record) error {
	if record == nil {
		return errors.New("cannot store nil record")
	}
	if record.ID == "" {
		return errors.New("record ID is required")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.records[record.ID]; ok {
		return fmt.Errorf("record %s already exists", record.ID)
	}

	stored := *record
	d.records[record.ID] = &stored
	return nil
}

// Get retrieves a record by its ID.
func (d *Driver) Get(_ context.Context, id string) (*storage.Record, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	record, ok := d.records[id]
	if !ok {
		return nil, storage.NotFoundError{ID: id}
	}

	out := *record
	return &out, nil
}

// List returns records, most recently started first.
func (d *Driver) List(_ context.Context, opts storage.ListOptions) ([]*storage.Record, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	records := make([]*storage.Record, 0, len(d.records))
	for _, record := range d.records {
		if opts.Action != "" && record.Action != opts.Action {
			continue
		}
		out := *record
		records = append(records, &out)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].StartedAt.Equal(records[j].StartedAt) {
			return records[i].ID > records[j].ID
		}
		return records[i].StartedAt.After(records[j].StartedAt)
	})

	if limit := opts.EffectiveLimit(); len(records) > limit {
		records = records[:limit]
	}

	return records, nil
}

// Stats aggregates every stored record.
func (d *Driver) Stats(_ context.Context) (*storage.Stats, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	stats := storage.NewStats()
	for _, record := range d.records {
		stats.Add(record.Action, record.Status, 1, record.Attempts)
	}
	return stats, nil
}

// Count returns the number of records in the store.
func (d *Driver) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.records)
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}
