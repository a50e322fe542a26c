package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/khabzox/fast-food/internal/domain"
)

// DocumentStore defines the interface for document persistence. Collections
// are schemaless and come into existence with their first document.
type DocumentStore interface {
	Create(ctx context.Context, databaseID, collectionID, id string, data map[string]any) (*domain.Document, error)
	Get(ctx context.Context, databaseID, collectionID, id string) (*domain.Document, error)
	List(ctx context.Context, databaseID, collectionID string, opts domain.ListOpts) (*domain.DocumentList, error)
	Delete(ctx context.Context, databaseID, collectionID, id string) error
}

// SQLiteDocumentStore implements DocumentStore backed by SQLite. Document
// data is stored as a JSON text column and filtered with json_extract.
type SQLiteDocumentStore struct {
	db *sql.DB
}

// NewSQLiteDocumentStore creates a new SQLiteDocumentStore.
func NewSQLiteDocumentStore(db *sql.DB) *SQLiteDocumentStore {
	return &SQLiteDocumentStore{db: db}
}

// Create inserts a new document. An empty id or "unique()" gets a generated id.
func (s *SQLiteDocumentStore) Create(ctx context.Context, databaseID, collectionID, id string, data map[string]any) (*domain.Document, error) {
	if id == "" || id == domain.UniqueID {
		id = domain.NewID()
	}
	if data == nil {
		data = map[string]any{}
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal document data: %w", err)
	}

	ts := now()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (database_id, collection_id, id, data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		databaseID, collectionID, id, string(raw), ts, ts,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("document %q already exists: %w", id, ErrConflict)
		}
		return nil, fmt.Errorf("insert document: %w", err)
	}

	return s.Get(ctx, databaseID, collectionID, id)
}

// Get retrieves a single document by id.
func (s *SQLiteDocumentStore) Get(ctx context.Context, databaseID, collectionID, id string) (*domain.Document, error) {
	var raw string
	doc := &domain.Document{DatabaseID: databaseID, CollectionID: collectionID}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, data, created_at, updated_at FROM documents
		 WHERE database_id = ? AND collection_id = ? AND id = ?`,
		databaseID, collectionID, id,
	).Scan(&doc.ID, &raw, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get document %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(raw), &doc.Data); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	return doc, nil
}

// List returns one page of documents in insertion order. Total counts every
// document matching the filters, ignoring limit, offset and cursor.
func (s *SQLiteDocumentStore) List(ctx context.Context, databaseID, collectionID string, opts domain.ListOpts) (*domain.DocumentList, error) {
	where := `database_id = ? AND collection_id = ?`
	args := []any{databaseID, collectionID}

	filterSQL, filterArgs := filterClause(opts.Filters, "json_extract(data, ?)", true)
	where += filterSQL
	args = append(args, filterArgs...)

	list := &domain.DocumentList{Documents: []*domain.Document{}}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE `+where, args...).Scan(&list.Total); err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	if opts.CursorAfter != "" {
		var seq int64
		err := s.db.QueryRowContext(ctx,
			`SELECT seq FROM documents WHERE database_id = ? AND collection_id = ? AND id = ?`,
			databaseID, collectionID, opts.CursorAfter,
		).Scan(&seq)
		if err != nil {
			return nil, fmt.Errorf("cursor document %s: %w", opts.CursorAfter, ErrNotFound)
		}
		where += ` AND seq > ?`
		args = append(args, seq)
	}

	query := `SELECT id, data, created_at, updated_at FROM documents WHERE ` + where
	if opts.OrderBy != "" {
		dir := "ASC"
		if opts.Descending {
			dir = "DESC"
		}
		query += ` ORDER BY json_extract(data, ?) ` + dir + `, seq ASC`
		args = append(args, "$."+opts.OrderBy)
	} else {
		query += ` ORDER BY seq ASC`
	}
	query += ` LIMIT ? OFFSET ?`
	args = append(args, clampLimit(opts.Limit), max(opts.Offset, 0))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var raw string
		doc := &domain.Document{DatabaseID: databaseID, CollectionID: collectionID}
		if err := rows.Scan(&doc.ID, &raw, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &doc.Data); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", doc.ID, err)
		}
		list.Documents = append(list.Documents, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return list, nil
}

// Delete removes a document. Deleting a missing document is an error.
func (s *SQLiteDocumentStore) Delete(ctx context.Context, databaseID, collectionID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE database_id = ? AND collection_id = ? AND id = ?`,
		databaseID, collectionID, id,
	)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete document %s: %w", id, ErrNotFound)
	}
	return nil
}

// filterClause renders equal and search filters. column is an SQL expression
// for the attribute; when jsonPath is true the attribute is bound as a
// "$.name" JSON path argument of that expression, otherwise the expression
// is used as is and the attribute is ignored.
func filterClause(filters []domain.Filter, column string, jsonPath bool) (string, []any) {
	var b strings.Builder
	var args []any

	for _, f := range filters {
		if len(f.Values) == 0 {
			continue
		}

		var colArgs []any
		if jsonPath {
			colArgs = []any{"$." + f.Attribute}
		}

		switch f.Method {
		case domain.QueryEqual:
			b.WriteString(` AND CAST(` + column + ` AS TEXT) IN (` + placeholders(len(f.Values)) + `)`)
			args = append(args, colArgs...)
			for _, v := range f.Values {
				args = append(args, v)
			}
		case domain.QuerySearch:
			b.WriteString(` AND ` + column + ` LIKE ?`)
			args = append(args, colArgs...)
			args = append(args, "%"+f.Values[0]+"%")
		}
	}

	return b.String(), args
}
