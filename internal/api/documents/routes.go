package documents

import (
	"net/http"

	"github.com/khabzox/fast-food/internal/store"
)

// RegisterRoutes adds all document endpoints to the given mux.
func RegisterRoutes(mux *http.ServeMux, s *store.Store) {
	h := &Handler{store: s}

	const base = "/v1/databases/{databaseId}/collections/{collectionId}/documents"
	mux.HandleFunc("GET "+base, h.List)
	mux.HandleFunc("POST "+base, h.Create)
	mux.HandleFunc("GET "+base+"/{documentId}", h.Get)
	mux.HandleFunc("DELETE "+base+"/{documentId}", h.Delete)
}
