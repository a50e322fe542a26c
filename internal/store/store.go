package store

import "database/sql"

// Store holds all sub-stores used by the emulator.
type Store struct {
	DB        *sql.DB
	Documents DocumentStore
	Files     FileStore
	Requests  RequestLogStore
}

// New creates a Store with all sub-stores initialized.
func New(db *sql.DB) *Store {
	return &Store{
		DB:        db,
		Documents: NewSQLiteDocumentStore(db),
		Files:     NewSQLiteFileStore(db),
		Requests:  NewSQLiteRequestLogStore(db),
	}
}
