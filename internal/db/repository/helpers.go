// Package repository contains the SQLite-backed implementations of the
// domain repository interfaces.
package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"dirgate/internal/domain"
)

// timeLayout is the storage format for timestamps, matching what SQLite's
// datetime('now') produces. All stored times are UTC.
const timeLayout = "2006-01-02 15:04:05"

// mapDBError converts low-level SQLite errors into typed domain errors.
// Unrecognized errors pass through wrapped with the operation name.
func mapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound("%s: not found", op)
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return domain.ErrConflict("%s: already exists", op)
	}
	if strings.Contains(msg, "FOREIGN KEY constraint failed") {
		return domain.ErrConflict("%s: referenced row missing or still in use", op)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(timeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// nullTimeString converts an optional time to its nullable column value.
func nullTimeString(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

// timePtr converts a nullable column value back to an optional time.
func timePtr(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// nullString converts an optional string to its nullable column value.
func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// stringPtr converts a nullable column value back to an optional string.
func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// likePattern escapes LIKE metacharacters in a user-supplied search term and
// wraps it for substring matching.
func likePattern(search string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(search)
	return "%" + escaped + "%"
}
