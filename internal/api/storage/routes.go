package storage

import (
	"net/http"

	"github.com/khabzox/fast-food/internal/store"
)

// RegisterRoutes adds all storage file endpoints to the given mux.
func RegisterRoutes(mux *http.ServeMux, s *store.Store) {
	h := &Handler{store: s}

	const base = "/v1/storage/buckets/{bucketId}/files"
	mux.HandleFunc("GET "+base, h.List)
	mux.HandleFunc("POST "+base, h.Create)
	mux.HandleFunc("GET "+base+"/{fileId}", h.Get)
	mux.HandleFunc("GET "+base+"/{fileId}/view", h.View)
	mux.HandleFunc("DELETE "+base+"/{fileId}", h.Delete)
}
