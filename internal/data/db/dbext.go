package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// FileName is the database file created inside the data directory.
const FileName = "taskdesk.db"

const (
	pingAttempts = 5
	pingBackoff  = 100 * time.Millisecond
)

// OpenOptions configures the connection pool.
type OpenOptions struct {
	MaxOpenConns int
	MaxIdleConns int
	BusyTimeout  int // milliseconds
}

// DefaultOpenOptions returns the pool settings used when no config is given.
func DefaultOpenOptions() OpenOptions {
	return OpenOptions{MaxOpenConns: 2, MaxIdleConns: 2, BusyTimeout: 5000}
}

func (o OpenOptions) dsn(path string) string {
	pragmas := []string{
		"journal_mode(WAL)",
		fmt.Sprintf("busy_timeout(%d)", o.BusyTimeout),
		"foreign_keys(ON)",
	}
	return "file:" + path + "?_pragma=" + strings.Join(pragmas, "&_pragma=")
}

// DB is the sqlite handle shared by the stores.
type DB struct {
	conn    *sql.DB
	queries *Queries
}

// Open opens <dataDir>/taskdesk.db in WAL mode and migrates it to the
// latest schema.
func Open(dataDir string, opts OpenOptions) (*DB, error) {
	ctx := context.Background()

	conn, err := sql.Open("sqlite", opts.dsn(filepath.Join(dataDir, FileName)))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn.SetMaxOpenConns(opts.MaxOpenConns)
	conn.SetMaxIdleConns(opts.MaxIdleConns)
	conn.SetConnMaxLifetime(0)

	if err := ping(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := migrateUp(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return &DB{conn: conn, queries: New(conn)}, nil
}

// Close closes the connection pool.
func (db *DB) Close() error { return db.conn.Close() }

// Conn exposes the pool for migrations and tests.
func (db *DB) Conn() *sql.DB { return db.conn }

// Queries returns queries bound to the pool.
func (db *DB) Queries() *Queries { return db.queries }

// WithTx runs fn inside a transaction, committing when fn returns nil.
func (db *DB) WithTx(ctx context.Context, fn func(*Queries) error) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err = fn(db.queries.WithTx(tx)); err != nil {
		if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
			return errors.Join(err, rerr)
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ping retries with doubling backoff; a locked file can briefly refuse the
// first connection.
func ping(ctx context.Context, conn *sql.DB) error {
	wait := pingBackoff
	var err error
	for attempt := 1; attempt <= pingAttempts; attempt++ {
		if err = conn.PingContext(ctx); err == nil {
			return nil
		}
		if attempt == pingAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return fmt.Errorf("connect to database after %d attempts: %w", pingAttempts, err)
}
