package store

import (
	"context"
	"crypto/md5" //nolint:gosec // signature is a content checksum, not a security boundary
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/khabzox/fast-food/internal/domain"
)

// FileStore defines the interface for bucket file persistence.
type FileStore interface {
	Create(ctx context.Context, bucketID, id, name, mimeType string, content []byte) (*domain.File, error)
	Get(ctx context.Context, bucketID, id string) (*domain.File, error)
	Content(ctx context.Context, bucketID, id string) (*domain.File, []byte, error)
	List(ctx context.Context, bucketID string, opts domain.ListOpts) (*domain.FileList, error)
	Delete(ctx context.Context, bucketID, id string) error
}

// fileColumns maps queryable file attributes to table columns.
var fileColumns = map[string]string{
	"name":     "name",
	"mimeType": "mime_type",
}

// SQLiteFileStore implements FileStore backed by SQLite. Content is kept
// inline as a BLOB.
type SQLiteFileStore struct {
	db *sql.DB
}

// NewSQLiteFileStore creates a new SQLiteFileStore.
func NewSQLiteFileStore(db *sql.DB) *SQLiteFileStore {
	return &SQLiteFileStore{db: db}
}

// Create stores a new file. An empty id or "unique()" gets a generated id.
func (s *SQLiteFileStore) Create(ctx context.Context, bucketID, id, name, mimeType string, content []byte) (*domain.File, error) {
	if id == "" || id == domain.UniqueID {
		id = domain.NewID()
	}

	sum := md5.Sum(content) //nolint:gosec // see import
	f := &domain.File{
		ID:           id,
		BucketID:     bucketID,
		Name:         name,
		Signature:    hex.EncodeToString(sum[:]),
		MimeType:     mimeType,
		SizeOriginal: int64(len(content)),
	}
	f.CreatedAt = now()
	f.UpdatedAt = f.CreatedAt

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO files (bucket_id, id, name, mime_type, size, signature, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.BucketID, f.ID, f.Name, f.MimeType, f.SizeOriginal, f.Signature, content, f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("file %q already exists: %w", id, ErrConflict)
		}
		return nil, fmt.Errorf("insert file: %w", err)
	}

	return f, nil
}

// Get returns file metadata without content.
func (s *SQLiteFileStore) Get(ctx context.Context, bucketID, id string) (*domain.File, error) {
	f := &domain.File{BucketID: bucketID}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, mime_type, size, signature, created_at, updated_at FROM files
		 WHERE bucket_id = ? AND id = ?`,
		bucketID, id,
	).Scan(&f.ID, &f.Name, &f.MimeType, &f.SizeOriginal, &f.Signature, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get file %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get file %s: %w", id, err)
	}
	return f, nil
}

// Content returns file metadata and the stored bytes.
func (s *SQLiteFileStore) Content(ctx context.Context, bucketID, id string) (*domain.File, []byte, error) {
	f, err := s.Get(ctx, bucketID, id)
	if err != nil {
		return nil, nil, err
	}

	var content []byte
	if err := s.db.QueryRowContext(ctx,
		`SELECT content FROM files WHERE bucket_id = ? AND id = ?`, bucketID, id,
	).Scan(&content); err != nil {
		return nil, nil, fmt.Errorf("read file %s: %w", id, err)
	}
	return f, content, nil
}

// List returns one page of files in upload order.
func (s *SQLiteFileStore) List(ctx context.Context, bucketID string, opts domain.ListOpts) (*domain.FileList, error) {
	where := `bucket_id = ?`
	args := []any{bucketID}

	for _, f := range opts.Filters {
		col, ok := fileColumns[f.Attribute]
		if !ok {
			continue
		}
		clause, clauseArgs := filterClause([]domain.Filter{f}, col, false)
		where += clause
		args = append(args, clauseArgs...)
	}

	list := &domain.FileList{Files: []*domain.File{}}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files WHERE `+where, args...).Scan(&list.Total); err != nil {
		return nil, fmt.Errorf("count files: %w", err)
	}

	if opts.CursorAfter != "" {
		var seq int64
		err := s.db.QueryRowContext(ctx,
			`SELECT seq FROM files WHERE bucket_id = ? AND id = ?`, bucketID, opts.CursorAfter,
		).Scan(&seq)
		if err != nil {
			return nil, fmt.Errorf("cursor file %s: %w", opts.CursorAfter, ErrNotFound)
		}
		where += ` AND seq > ?`
		args = append(args, seq)
	}

	query := `SELECT id, name, mime_type, size, signature, created_at, updated_at FROM files
		WHERE ` + where + ` ORDER BY seq ASC LIMIT ? OFFSET ?`
	args = append(args, clampLimit(opts.Limit), max(opts.Offset, 0))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		f := &domain.File{BucketID: bucketID}
		if err := rows.Scan(&f.ID, &f.Name, &f.MimeType, &f.SizeOriginal, &f.Signature, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		list.Files = append(list.Files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return list, nil
}

// Delete removes a file. Deleting a missing file is an error.
func (s *SQLiteFileStore) Delete(ctx context.Context, bucketID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE bucket_id = ? AND id = ?`, bucketID, id)
	if err != nil {
		return fmt.Errorf("delete file %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete file %s: %w", id, ErrNotFound)
	}
	return nil
}
