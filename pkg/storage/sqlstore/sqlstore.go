// Package sqlstore implements storage.Driver on database/sql. The sqlite and
// postgres packages wrap it with their own connection setup and dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/papercomputeco/venyro/pkg/storage"
)

// Dialect captures the SQL differences between backends.
type Dialect struct {
	// Name is used in error messages (e.g. "sqlite").
	Name string

	// Placeholder returns the bind parameter for the 1-based argument n.
	Placeholder func(n int) string

	// TimestampType is the column type for timestamps.
	TimestampType string
}

// QuestionPlaceholder binds every argument as "?".
func QuestionPlaceholder(int) string { return "?" }

// DollarPlaceholder binds arguments as "$1", "$2", ...
func DollarPlaceholder(n int) string { return "$" + strconv.Itoa(n) }

const recordColumns = `id, action, model, status, http_status, error_kind, error,
	attempts, history_turns, started_at, completed_at, duration_ms, result`

// Store implements storage.Driver over a *sql.DB.
type Store struct {
	DB      *sql.DB
	dialect Dialect
}

// New wraps db and creates the records schema if it does not exist.
func New(ctx context.Context, db *sql.DB, dialect Dialect) (*Store, error) {
	s := &Store{DB: db, dialect: dialect}
	if err := s.migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to create %s schema: %w", dialect.Name, err)
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	ts := s.dialect.TimestampType
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS invocation_records (
			id            TEXT PRIMARY KEY,
			action        TEXT NOT NULL,
			model         TEXT NOT NULL,
			status        TEXT NOT NULL,
			http_status   INTEGER NOT NULL,
			error_kind    TEXT NOT NULL DEFAULT '',
			error         TEXT NOT NULL DEFAULT '',
			attempts      INTEGER NOT NULL DEFAULT 0,
			history_turns INTEGER NOT NULL DEFAULT 0,
			started_at    ` + ts + ` NOT NULL,
			completed_at  ` + ts + ` NOT NULL,
			duration_ms   BIGINT NOT NULL DEFAULT 0,
			result        TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS invocation_records_action_idx ON invocation_records (action)`,
		`CREATE INDEX IF NOT EXISTS invocation_records_started_at_idx ON invocation_records (started_at)`,
	}

	for _, stmt := range stmts {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) placeholders(from, count int) string {
	parts := make([]string, count)
	for i := range parts {
		parts[i] = s.dialect.Placeholder(from + i)
	}
	return strings.Join(parts, ", ")
}

// Put stores a record.
func (s *Store) Put(ctx context.Context, r *storage.Record) error {
	if r == nil {
		return errors.New("cannot store nil record")
	}
	if r.ID == "" {
		return errors.New("record ID is required")
	}

	query := `INSERT INTO invocation_records (` + recordColumns + `) VALUES (` + s.placeholders(1, 13) + `)`
	_, err := s.DB.ExecContext(ctx, query,
		r.ID, r.Action, r.Model, string(r.Status), r.HTTPStatus, r.ErrorKind, r.Error,
		r.Attempts, r.HistoryTurns, r.StartedAt.UTC(), r.CompletedAt.UTC(), r.DurationMs, string(r.Result),
	)
	if err != nil {
		return fmt.Errorf("failed to insert record %s: %w", r.ID, err)
	}
	return nil
}

// Get retrieves a record by its ID.
func (s *Store) Get(ctx context.Context, id string) (*storage.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM invocation_records WHERE id = ` + s.dialect.Placeholder(1)
	record, err := scanRecord(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record %s: %w", id, err)
	}
	return record, nil
}

// List returns records, most recently started first.
func (s *Store) List(ctx context.Context, opts storage.ListOptions) ([]*storage.Record, error) {
	var (
		where string
		args  []any
	)
	if opts.Action != "" {
		args = append(args, opts.Action)
		where = ` WHERE action = ` + s.dialect.Placeholder(len(args))
	}
	args = append(args, opts.EffectiveLimit())

	query := `SELECT ` + recordColumns + ` FROM invocation_records` + where +
		` ORDER BY started_at DESC, id DESC LIMIT ` + s.dialect.Placeholder(len(args))

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []*storage.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return records, nil
}

// Stats aggregates every stored record.
func (s *Store) Stats(ctx context.Context) (*storage.Stats, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT action, status, COUNT(*), COALESCE(SUM(attempts), 0)
		 FROM invocation_records GROUP BY action, status`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate records: %w", err)
	}
	defer rows.Close()

	stats := storage.NewStats()
	for rows.Next() {
		var (
			action, status  string
			count, attempts int64
		)
		if err := rows.Scan(&action, &status, &count, &attempts); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		stats.Add(action, storage.Status(status), int(count), int(attempts))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to aggregate records: %w", err)
	}
	return stats, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*storage.Record, error) {
	var (
		r                      storage.Record
		status, result         string
		startedAt, completedAt time.Time
	)

	err := row.Scan(
		&r.ID, &r.Action, &r.Model, &status, &r.HTTPStatus, &r.ErrorKind, &r.Error,
		&r.Attempts, &r.HistoryTurns, &startedAt, &completedAt, &r.DurationMs, &result,
	)
	if err != nil {
		return nil, err
	}

	r.Status = storage.Status(status)
	r.StartedAt = startedAt.UTC()
	r.CompletedAt = completedAt.UTC()
	if result != "" {
		r.Result = []byte(result)
	}
	return &r, nil
}
