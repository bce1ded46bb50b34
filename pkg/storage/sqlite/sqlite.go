// Package sqlite provides a SQLite-backed storage driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/papercomputeco/venyro/pkg/storage/sqlstore"
)

// SQLiteDriver implements storage.Driver using SQLite.
type SQLiteDriver struct {
	*sqlstore.Store
}

// NewSQLiteDriver creates a new SQLite-backed driver.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewSQLiteDriver(ctx context.Context, dbPath string) (*SQLiteDriver, error) {
	// Open the database using the github.com/mattn/go-sqlite3 driver (registered as "sqlite3")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Each connection to ":memory:" is a separate database
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	store, err := sqlstore.New(ctx, db, sqlstore.Dialect{
		Name:          "sqlite",
		Placeholder:   sqlstore.QuestionPlaceholder,
		TimestampType: "TIMESTAMP",
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteDriver{Store: store}, nil
}
