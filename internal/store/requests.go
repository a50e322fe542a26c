package store

import (
	"context"
	"database/sql"
	"fmt"
)

// RequestLogEntry is one handled API request.
type RequestLogEntry struct {
	ID            int64  `json:"id"`
	Method        string `json:"method"`
	Path          string `json:"path"`
	StatusCode    int    `json:"statusCode"`
	DurationMs    int64  `json:"durationMs"`
	CorrelationID string `json:"correlationId,omitempty"`
	CreatedAt     string `json:"createdAt"`
}

// RequestLogStore records and lists handled requests.
type RequestLogStore interface {
	Record(ctx context.Context, e RequestLogEntry) error
	List(ctx context.Context, limit int, before int64) ([]RequestLogEntry, error)
}

// SQLiteRequestLogStore implements RequestLogStore backed by SQLite.
type SQLiteRequestLogStore struct {
	db *sql.DB
}

// NewSQLiteRequestLogStore creates a new SQLiteRequestLogStore.
func NewSQLiteRequestLogStore(db *sql.DB) *SQLiteRequestLogStore {
	return &SQLiteRequestLogStore{db: db}
}

// Record appends an entry. CreatedAt defaults to the current time.
func (s *SQLiteRequestLogStore) Record(ctx context.Context, e RequestLogEntry) error {
	if e.CreatedAt == "" {
		e.CreatedAt = now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO request_log (method, path, status_code, duration_ms, correlation_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.Method, e.Path, e.StatusCode, e.DurationMs, e.CorrelationID, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert request log: %w", err)
	}
	return nil
}

// List returns entries newest first. A positive before restricts the result
// to entries with a smaller id, for cursor pagination.
func (s *SQLiteRequestLogStore) List(ctx context.Context, limit int, before int64) ([]RequestLogEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, method, path, status_code, COALESCE(duration_ms, 0), COALESCE(correlation_id, ''), created_at
		FROM request_log`
	args := []any{}
	if before > 0 {
		query += ` WHERE id < ?`
		args = append(args, before)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query request log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]RequestLogEntry, 0, limit)
	for rows.Next() {
		var e RequestLogEntry
		if err := rows.Scan(&e.ID, &e.Method, &e.Path, &e.StatusCode, &e.DurationMs, &e.CorrelationID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan request log: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return entries, nil
}
