// Package server assembles the menubase emulator's HTTP handler.
package server

import (
	"fmt"
	"net/http"

	"github.com/khabzox/fast-food/internal/api"
	"github.com/khabzox/fast-food/internal/api/admin"
	"github.com/khabzox/fast-food/internal/api/documents"
	"github.com/khabzox/fast-food/internal/api/storage"
	"github.com/khabzox/fast-food/internal/metrics"
	"github.com/khabzox/fast-food/internal/store"
)

// NewHandler returns the emulator's full middleware chain and routes. An
// empty apiKey disables key checks.
func NewHandler(s *store.Store, apiKey string) http.Handler {
	mux := http.NewServeMux()

	// Platform API routes
	documents.RegisterRoutes(mux, s)
	storage.RegisterRoutes(mux, s)

	// Admin API
	admin.RegisterRoutes(mux, s)

	mux.Handle("GET /metrics", metrics.Handler())

	// Catch-all: return 404 in the platform's error format.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		corrID := api.CorrelationID(r.Context())
		api.WriteError(w, http.StatusNotFound, api.NewNotFoundError(api.TypeRouteNotFound,
			fmt.Sprintf("No route found for %s %s", r.Method, r.URL.Path),
			corrID,
		))
	})

	return api.Chain(mux,
		api.Recovery(),
		api.RequestID(),
		metrics.Instrument(),
		api.Auth(apiKey),
		api.JSONContentType(),
		api.RequestLog(s.Requests),
		api.Logging(),
	)
}
