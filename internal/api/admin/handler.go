package admin

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/khabzox/fast-food/internal/api"
	"github.com/khabzox/fast-food/internal/database"
	"github.com/khabzox/fast-food/internal/store"
)

// Handler serves the emulator admin API at /_menubase/.
type Handler struct {
	store *store.Store
}

// Reset drops every document, file and logged request.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := database.Reset(r.Context(), h.store.DB); err != nil {
		corrID := api.CorrelationID(r.Context())
		api.WriteError(w, http.StatusInternalServerError,
			api.NewInternalError(fmt.Errorf("reset: %w", err), corrID))
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type requestsPage struct {
	Requests []store.RequestLogEntry `json:"requests"`
	Next     string                  `json:"next,omitempty"`
}

// Requests returns request log entries, newest first, with cursor-based
// pagination. The "next" field is passed back as the "before" parameter.
func (h *Handler) Requests(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	var before int64
	if v := r.URL.Query().Get("before"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			before = n
		}
	}

	entries, err := h.store.Requests.List(r.Context(), limit+1, before)
	if err != nil {
		corrID := api.CorrelationID(r.Context())
		api.WriteError(w, http.StatusInternalServerError, api.NewInternalError(err, corrID))
		return
	}

	page := requestsPage{Requests: entries}
	if len(entries) > limit {
		page.Requests = entries[:limit]
		page.Next = strconv.FormatInt(page.Requests[limit-1].ID, 10)
	}

	api.WriteJSON(w, http.StatusOK, page)
}
