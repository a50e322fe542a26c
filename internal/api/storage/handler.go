package storage

import (
	"errors"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"

	"github.com/khabzox/fast-food/internal/api"
	"github.com/khabzox/fast-food/internal/metrics"
	"github.com/khabzox/fast-food/internal/store"
)

// maxUploadSize bounds a single multipart upload.
const maxUploadSize = 30 << 20

// Handler handles bucket file HTTP requests.
type Handler struct {
	store *store.Store
}

// Create handles POST /v1/storage/buckets/{bucketId}/files. The request is
// multipart with a "fileId" field and a "file" part.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	bucketID := r.PathValue("bucketId")
	corrID := api.CorrelationID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.NewValidationError("Invalid multipart body: "+err.Error(), corrID))
		return
	}

	fileID := r.FormValue("fileId")
	if fileID == "" {
		api.WriteError(w, http.StatusBadRequest, api.NewValidationError("Param \"fileId\" is not optional.", corrID))
		return
	}

	part, header, err := r.FormFile("file")
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, api.NewValidationError("Param \"file\" is not optional.", corrID))
		return
	}
	defer func() { _ = part.Close() }()

	content, err := io.ReadAll(part)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, api.NewValidationError("Failed to read file: "+err.Error(), corrID))
		return
	}
	if len(content) == 0 {
		api.WriteError(w, http.StatusBadRequest, api.NewError(http.StatusBadRequest, api.TypeFileEmpty,
			"Empty file passed to the endpoint.", corrID))
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = mimetype.Detect(content).String()
	}

	f, err := h.store.Files.Create(r.Context(), bucketID, fileID, header.Filename, mimeType, content)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			api.WriteError(w, http.StatusConflict, api.NewConflictError(api.TypeFileExists,
				"A storage file with the requested ID already exists.", corrID))
			return
		}
		api.WriteError(w, http.StatusInternalServerError, api.NewInternalError(err, corrID))
		return
	}
	metrics.RecordUpload(f.MimeType, f.SizeOriginal)

	api.WriteJSON(w, http.StatusCreated, f)
}

// List handles GET /v1/storage/buckets/{bucketId}/files.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	corrID := api.CorrelationID(r.Context())

	opts, err := api.ParseQueries(r)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, api.NewError(http.StatusBadRequest, api.TypeQueryInvalid, err.Error(), corrID))
		return
	}

	list, err := h.store.Files.List(r.Context(), r.PathValue("bucketId"), opts)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteError(w, http.StatusBadRequest, api.NewError(http.StatusBadRequest, api.TypeQueryInvalid,
				"Invalid query: Cursor file not found.", corrID))
			return
		}
		api.WriteError(w, http.StatusInternalServerError, api.NewInternalError(err, corrID))
		return
	}

	api.WriteJSON(w, http.StatusOK, list)
}

// Get handles GET /v1/storage/buckets/{bucketId}/files/{fileId}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	corrID := api.CorrelationID(r.Context())

	f, err := h.store.Files.Get(r.Context(), r.PathValue("bucketId"), r.PathValue("fileId"))
	if err != nil {
		writeStoreError(w, err, corrID)
		return
	}

	api.WriteJSON(w, http.StatusOK, f)
}

// View handles GET /v1/storage/buckets/{bucketId}/files/{fileId}/view and
// serves the raw file content.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	corrID := api.CorrelationID(r.Context())

	f, content, err := h.store.Files.Content(r.Context(), r.PathValue("bucketId"), r.PathValue("fileId"))
	if err != nil {
		writeStoreError(w, err, corrID)
		return
	}

	api.WriteBlob(w, f.MimeType, content)
}

// Delete handles DELETE /v1/storage/buckets/{bucketId}/files/{fileId}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	corrID := api.CorrelationID(r.Context())

	if err := h.store.Files.Delete(r.Context(), r.PathValue("bucketId"), r.PathValue("fileId")); err != nil {
		writeStoreError(w, err, corrID)
		return
	}

	api.WriteNoContent(w)
}

func writeStoreError(w http.ResponseWriter, err error, corrID string) {
	if errors.Is(err, store.ErrNotFound) {
		api.WriteError(w, http.StatusNotFound, api.NewNotFoundError(api.TypeFileNotFound,
			"The requested file could not be found.", corrID))
		return
	}
	api.WriteError(w, http.StatusInternalServerError, api.NewInternalError(err, corrID))
}
