package db

import (
	"cmp"
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/colonyops/taskdesk/internal/core/logging"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Direction selects which half of a migration runs.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Migration is one schema version with its up and down SQL.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

func (m Migration) script(dir Direction) string {
	if dir == Down {
		return m.DownSQL
	}
	return m.UpSQL
}

// MigrationFile is a parsed "NNNN_name.{up,down}.sql" filename.
type MigrationFile struct {
	Version   int
	Name      string
	Direction Direction
}

// ParseMigrationFile validates and splits a migration filename.
func ParseMigrationFile(filename string) (MigrationFile, error) {
	var f MigrationFile

	stem, ok := strings.CutSuffix(filename, ".sql")
	if !ok {
		return f, fmt.Errorf("expected .sql suffix")
	}
	dot := strings.LastIndexByte(stem, '.')
	if dot < 0 {
		return f, fmt.Errorf("expected .up.sql or .down.sql suffix")
	}
	switch Direction(stem[dot+1:]) {
	case Up:
		f.Direction = Up
	case Down:
		f.Direction = Down
	default:
		return f, fmt.Errorf("unknown direction %q", stem[dot+1:])
	}

	num, name, ok := strings.Cut(stem[:dot], "_")
	if !ok || name == "" {
		return f, fmt.Errorf("expected format NNNN_name.{up,down}.sql")
	}
	v, err := strconv.Atoi(num)
	if err != nil {
		return f, fmt.Errorf("version %q is not a number", num)
	}
	if v < 1 {
		return f, fmt.Errorf("version must be at least 1, got %d", v)
	}

	f.Version = v
	f.Name = name
	return f, nil
}

// loadMigrations reads the embedded SQL files, pairs up and down halves by
// version and returns them in ascending order.
func loadMigrations() ([]Migration, error) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	byVersion := map[int]*Migration{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		f, err := ParseMigrationFile(entry.Name())
		if err != nil {
			return nil, fmt.Errorf("migration file %s: %w", entry.Name(), err)
		}
		body, err := fs.ReadFile(migrationsFS, path.Join("migrations", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}

		m, ok := byVersion[f.Version]
		if !ok {
			m = &Migration{Version: f.Version, Name: f.Name}
			byVersion[f.Version] = m
		}
		if m.Name != f.Name {
			return nil, fmt.Errorf("migration %04d has mismatched names %q and %q", f.Version, m.Name, f.Name)
		}

		half := &m.UpSQL
		if f.Direction == Down {
			half = &m.DownSQL
		}
		if *half != "" {
			return nil, fmt.Errorf("duplicate %s file for migration %04d", f.Direction, f.Version)
		}
		*half = string(body)
	}

	out := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.UpSQL == "" || m.DownSQL == "" {
			return nil, fmt.Errorf("migration %04d needs both an up and a down file", m.Version)
		}
		out = append(out, *m)
	}
	slices.SortFunc(out, func(a, b Migration) int { return cmp.Compare(a.Version, b.Version) })
	return out, nil
}

// migrateUp applies every migration not yet recorded in schema_migrations.
func migrateUp(ctx context.Context, conn *sql.DB) error {
	migrations, applied, err := migrationState(ctx, conn)
	if err != nil {
		return err
	}

	log := logging.Component("migrations")
	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		log.Debug().Int("version", m.Version).Str("name", m.Name).Msg("applying migration")
		if err := runStep(ctx, conn, m, Up); err != nil {
			return err
		}
	}
	return nil
}

// MigrateDown reverts the newest n applied migrations, newest first.
func MigrateDown(ctx context.Context, conn *sql.DB, n int) error {
	if n < 1 {
		return fmt.Errorf("down migration count must be at least 1, got %d", n)
	}

	migrations, applied, err := migrationState(ctx, conn)
	if err != nil {
		return err
	}

	var revert []Migration
	for _, m := range slices.Backward(migrations) {
		if applied[m.Version] {
			revert = append(revert, m)
		}
	}
	if n > len(revert) {
		return fmt.Errorf("cannot revert %d migrations, only %d applied", n, len(revert))
	}

	log := logging.Component("migrations")
	for _, m := range revert[:n] {
		log.Info().Int("version", m.Version).Str("name", m.Name).Msg("reverting migration")
		if err := runStep(ctx, conn, m, Down); err != nil {
			return err
		}
	}
	return nil
}

// CurrentVersion returns the highest applied version, 0 when none.
func CurrentVersion(ctx context.Context, conn *sql.DB) (int, error) {
	var v sql.NullInt64
	err := conn.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return int(v.Int64), nil
}

func migrationState(ctx context.Context, conn *sql.DB) ([]Migration, map[int]bool, error) {
	migrations, err := loadMigrations()
	if err != nil {
		return nil, nil, err
	}

	const ddl = `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		name       TEXT NOT NULL,
		applied_at INTEGER NOT NULL
	)`
	if _, err := conn.ExecContext(ctx, ddl); err != nil {
		return nil, nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	rows, err := conn.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	applied := map[int]bool{}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, nil, fmt.Errorf("scan applied migration: %w", err)
		}
		applied[v] = true
	}
	return migrations, applied, rows.Err()
}

// runStep executes one half of m and updates schema_migrations in the same
// transaction.
func runStep(ctx context.Context, conn *sql.DB, m Migration, dir Direction) (err error) {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migration %04d %s: begin: %w", m.Version, dir, err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, ignoreDone(tx.Rollback()))
		}
	}()

	if _, err = tx.ExecContext(ctx, m.script(dir)); err != nil {
		return fmt.Errorf("migration %04d (%s) %s: %w", m.Version, m.Name, dir, err)
	}

	if dir == Up {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
			m.Version, m.Name, time.Now().UnixNano())
	} else {
		_, err = tx.ExecContext(ctx, "DELETE FROM schema_migrations WHERE version = ?", m.Version)
	}
	if err != nil {
		return fmt.Errorf("migration %04d %s: record: %w", m.Version, dir, err)
	}

	return tx.Commit()
}

func ignoreDone(err error) error {
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}
