package api

import "net/http"

// Version is reported in every error body, as the hosted platform does.
const Version = "1.5.7"

// Error types returned in the "type" field.
const (
	TypeArgumentInvalid  = "general_argument_invalid"
	TypeQueryInvalid     = "general_query_invalid"
	TypeUnauthorized     = "general_unauthorized_scope"
	TypeRouteNotFound    = "general_route_not_found"
	TypeServerError      = "general_server_error"
	TypeDocumentNotFound = "document_not_found"
	TypeDocumentExists   = "document_already_exists"
	TypeFileNotFound     = "storage_file_not_found"
	TypeFileExists       = "storage_file_already_exists"
	TypeFileEmpty        = "storage_file_empty"
)

// Error is the JSON error body returned by every endpoint.
type Error struct {
	Message       string `json:"message"`
	Code          int    `json:"code"`
	Type          string `json:"type"`
	Version       string `json:"version"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// NewError creates an error with the given status code and type.
func NewError(code int, errType, message, correlationID string) *Error {
	return &Error{
		Message:       message,
		Code:          code,
		Type:          errType,
		Version:       Version,
		CorrelationID: correlationID,
	}
}

// NewNotFoundError creates a 404 error.
func NewNotFoundError(errType, message, correlationID string) *Error {
	return NewError(http.StatusNotFound, errType, message, correlationID)
}

// NewValidationError creates a 400 error with the general_argument_invalid type.
func NewValidationError(message, correlationID string) *Error {
	return NewError(http.StatusBadRequest, TypeArgumentInvalid, message, correlationID)
}

// NewConflictError creates a 409 error.
func NewConflictError(errType, message, correlationID string) *Error {
	return NewError(http.StatusConflict, errType, message, correlationID)
}

// NewInternalError creates a 500 error carrying err's message.
func NewInternalError(err error, correlationID string) *Error {
	return NewError(http.StatusInternalServerError, TypeServerError, err.Error(), correlationID)
}

// WriteError writes an Error as a JSON response with the given HTTP status
// code. The body's code field always matches the status.
func WriteError(w http.ResponseWriter, statusCode int, apiErr *Error) {
	apiErr.Code = statusCode
	if apiErr.Version == "" {
		apiErr.Version = Version
	}
	WriteJSON(w, statusCode, apiErr)
}
