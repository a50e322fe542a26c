package testhelpers

import (
	"context"
	"database/sql"
	"net/http/httptest"
	"testing"

	"github.com/khabzox/fast-food/internal/backend"
	"github.com/khabzox/fast-food/internal/database"
	"github.com/khabzox/fast-food/internal/server"
	"github.com/khabzox/fast-food/internal/store"
)

// TestProject is the project id used by NewClient.
const TestProject = "test-project"

// NewTestDB returns an in-memory SQLite database configured the same way as
// production. The database is automatically closed when the test completes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// NewServer starts a menubase emulator on a migrated in-memory database.
// The server and database are closed when the test completes.
func NewServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()

	db := NewTestDB(t)
	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	s := store.New(db)
	srv := httptest.NewServer(server.NewHandler(s, ""))
	t.Cleanup(srv.Close)

	return srv, s
}

// NewClient returns a backend client talking to srv.
func NewClient(t *testing.T, srv *httptest.Server) *backend.Client {
	t.Helper()

	c, err := backend.New(backend.Config{
		Endpoint:   srv.URL + "/v1",
		ProjectID:  TestProject,
		HTTPClient: srv.Client(),
	})
	if err != nil {
		t.Fatalf("new backend client: %v", err)
	}
	return c
}
