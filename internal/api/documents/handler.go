package documents

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/khabzox/fast-food/internal/api"
	"github.com/khabzox/fast-food/internal/store"
)

// Handler handles document HTTP requests.
type Handler struct {
	store *store.Store
}

type createRequest struct {
	DocumentID  string         `json:"documentId"`
	Data        map[string]any `json:"data"`
	Permissions []string       `json:"permissions,omitempty"`
}

// Create handles POST /v1/databases/{databaseId}/collections/{collectionId}/documents.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	databaseID := r.PathValue("databaseId")
	collectionID := r.PathValue("collectionId")
	corrID := api.CorrelationID(r.Context())

	var body createRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.NewValidationError("Invalid input JSON", corrID))
		return
	}
	if body.DocumentID == "" {
		api.WriteError(w, http.StatusBadRequest, api.NewValidationError("Param \"documentId\" is not optional.", corrID))
		return
	}
	if body.Data == nil {
		api.WriteError(w, http.StatusBadRequest, api.NewValidationError("Param \"data\" is not optional.", corrID))
		return
	}

	doc, err := h.store.Documents.Create(r.Context(), databaseID, collectionID, body.DocumentID, body.Data)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			api.WriteError(w, http.StatusConflict, api.NewConflictError(api.TypeDocumentExists,
				"Document with the requested ID already exists.", corrID))
			return
		}
		api.WriteError(w, http.StatusInternalServerError, api.NewInternalError(err, corrID))
		return
	}

	api.WriteJSON(w, http.StatusCreated, doc)
}

// Get handles GET /v1/databases/{databaseId}/collections/{collectionId}/documents/{documentId}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	corrID := api.CorrelationID(r.Context())

	doc, err := h.store.Documents.Get(r.Context(), r.PathValue("databaseId"), r.PathValue("collectionId"), r.PathValue("documentId"))
	if err != nil {
		writeStoreError(w, err, corrID)
		return
	}

	api.WriteJSON(w, http.StatusOK, doc)
}

// List handles GET /v1/databases/{databaseId}/collections/{collectionId}/documents.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	corrID := api.CorrelationID(r.Context())

	opts, err := api.ParseQueries(r)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, api.NewError(http.StatusBadRequest, api.TypeQueryInvalid, err.Error(), corrID))
		return
	}

	list, err := h.store.Documents.List(r.Context(), r.PathValue("databaseId"), r.PathValue("collectionId"), opts)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteError(w, http.StatusBadRequest, api.NewError(http.StatusBadRequest, api.TypeQueryInvalid,
				"Invalid query: Cursor document not found.", corrID))
			return
		}
		api.WriteError(w, http.StatusInternalServerError, api.NewInternalError(err, corrID))
		return
	}

	api.WriteJSON(w, http.StatusOK, list)
}

// Delete handles DELETE /v1/databases/{databaseId}/collections/{collectionId}/documents/{documentId}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	corrID := api.CorrelationID(r.Context())

	err := h.store.Documents.Delete(r.Context(), r.PathValue("databaseId"), r.PathValue("collectionId"), r.PathValue("documentId"))
	if err != nil {
		writeStoreError(w, err, corrID)
		return
	}

	api.WriteNoContent(w)
}

func writeStoreError(w http.ResponseWriter, err error, corrID string) {
	if errors.Is(err, store.ErrNotFound) {
		api.WriteError(w, http.StatusNotFound, api.NewNotFoundError(api.TypeDocumentNotFound,
			"Document with the requested ID could not be found.", corrID))
		return
	}
	api.WriteError(w, http.StatusInternalServerError, api.NewInternalError(err, corrID))
}
