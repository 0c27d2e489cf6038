package stores

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/colonyops/taskdesk/internal/data/db"
)

// sqliteCode returns the extended result code carried by err, or 0.
func sqliteCode(err error) int {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code()
	}
	return 0
}

// IsCorruptionError reports whether err means the database file is damaged
// or is not a database at all.
func IsCorruptionError(err error) bool {
	if err == nil {
		return false
	}
	switch sqliteCode(err) & 0xff {
	case sqlite3.SQLITE_CORRUPT, sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_CANTOPEN:
		return true
	}

	// errors that crossed a fmt.Errorf without %w only keep their text
	msg := err.Error()
	for _, s := range []string{"database disk image is malformed", "file is not a database"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// IsNotFoundError reports whether err wraps sql.ErrNoRows.
func IsNotFoundError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return sqliteCode(err) == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// RecoverFromCorruption moves the database file and its WAL and SHM
// companions aside as <file>.corrupt.<timestamp>, so the next db.Open starts
// from an empty schema. It returns the backup path of the main file. A
// missing file is not an error.
func RecoverFromCorruption(dataDir string) (string, error) {
	live := filepath.Join(dataDir, db.FileName)
	backup := fmt.Sprintf("%s.corrupt.%s", live, time.Now().Format("20060102-150405"))

	for _, suffix := range []string{"", "-wal", "-shm"} {
		from, to := live+suffix, backup+suffix
		err := os.Rename(from, to)
		if err == nil || errors.Is(err, os.ErrNotExist) {
			continue
		}
		// a stale WAL next to a fresh database is worse than losing it
		if suffix != "" && os.Remove(from) == nil {
			continue
		}
		return "", fmt.Errorf("move %s aside: %w", filepath.Base(from), err)
	}

	return backup, nil
}
