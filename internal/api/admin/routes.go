package admin

import (
	"net/http"

	"github.com/khabzox/fast-food/internal/store"
)

// RegisterRoutes registers all admin API endpoints on the mux.
func RegisterRoutes(mux *http.ServeMux, s *store.Store) {
	h := &Handler{store: s}

	mux.HandleFunc("POST /_menubase/reset", h.Reset)
	mux.HandleFunc("GET /_menubase/requests", h.Requests)
}
