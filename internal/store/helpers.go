package store

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when a requested document or file does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a unique constraint is violated.
var ErrConflict = errors.New("conflict")

const (
	defaultLimit = 25
	maxLimit     = 100
)

// now returns the current UTC time formatted the way the platform reports
// $createdAt and $updatedAt.
func now() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
