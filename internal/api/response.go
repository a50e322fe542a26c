package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

// fileCacheControl matches the caching the platform applies to file views.
const fileCacheControl = "private, max-age=2592000"

// WriteJSON marshals v as JSON and writes it to w with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

// WriteBlob writes stored file content with its MIME type.
func WriteBlob(w http.ResponseWriter, mimeType string, content []byte) {
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.Header().Set("Cache-Control", fileCacheControl)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(content); err != nil {
		slog.Warn("failed to write file response", "error", err)
	}
}

// WriteNoContent writes an empty 204 response, used by delete endpoints.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
