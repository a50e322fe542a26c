package database

// migrations is an ordered list of SQL migration groups. Each entry is a slice
// of SQL statements that are executed together in a single transaction. The
// version number is the 1-based index into this slice.
var migrations = [][]string{
	// Migration 1: documents and files
	{
		`CREATE TABLE documents (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			database_id TEXT NOT NULL,
			collection_id TEXT NOT NULL,
			id TEXT NOT NULL,
			data TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			UNIQUE (database_id, collection_id, id)
		)`,
		`CREATE INDEX idx_documents_collection ON documents(database_id, collection_id, seq)`,

		`CREATE TABLE files (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			bucket_id TEXT NOT NULL,
			id TEXT NOT NULL,
			name TEXT NOT NULL,
			mime_type TEXT NOT NULL,
			size INTEGER NOT NULL,
			signature TEXT NOT NULL,
			content BLOB NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			UNIQUE (bucket_id, id)
		)`,
		`CREATE INDEX idx_files_bucket ON files(bucket_id, seq)`,
	},

	// Migration 2: request log for the admin API
	{
		`CREATE TABLE request_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			method TEXT NOT NULL,
			path TEXT NOT NULL,
			status_code INTEGER NOT NULL,
			duration_ms INTEGER,
			correlation_id TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX idx_request_log_time ON request_log(created_at)`,
	},
}

// dataTables lists every table cleared by Reset.
var dataTables = []string{
	"documents",
	"files",
	"request_log",
}
