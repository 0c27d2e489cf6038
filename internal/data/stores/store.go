// Package stores implements the core Store interfaces on top of the SQLite
// database in internal/data/db.
package stores

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/colonyops/taskdesk/internal/core/user"
)

// toNullString converts a string to sql.NullString (empty string = NULL).
func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// fromNullString converts a sql.NullString to a string.
func fromNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// toNullTime stores a timestamp as UnixNano, with the zero time as NULL.
func toNullTime(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func toNullTimePtr(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return toNullTime(*t)
}

func fromUnix(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func fromNullTime(n sql.NullInt64) time.Time {
	if !n.Valid {
		return time.Time{}
	}
	return fromUnix(n.Int64)
}

func fromNullTimePtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromUnix(n.Int64)
	return &t
}

func encodeRef(r user.Ref) (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("marshal user ref: %w", err)
	}
	return string(data), nil
}

func decodeRef(s string) (user.Ref, error) {
	var r user.Ref
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		return user.Ref{}, fmt.Errorf("unmarshal user ref: %w", err)
	}
	return r, nil
}
