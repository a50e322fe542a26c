package backend

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// Error is a non-2xx response from the platform.
type Error struct {
	Code    int
	Type    string
	Message string
}

func (e *Error) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("backend: %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("backend: %s (%d): %s", e.Type, e.Code, e.Message)
}

// decodeError builds an *Error from a response body. Bodies that are not
// the platform's JSON error shape keep the status code and raw text.
func decodeError(status int, body []byte) error {
	e := &Error{Code: status}
	if gjson.ValidBytes(body) {
		res := gjson.ParseBytes(body)
		e.Type = res.Get("type").String()
		e.Message = res.Get("message").String()
	}
	if e.Message == "" {
		e.Message = string(body)
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	return hasCode(err, http.StatusNotFound)
}

// IsConflict reports whether err is a 409 response.
func IsConflict(err error) bool {
	return hasCode(err, http.StatusConflict)
}

func hasCode(err error, code int) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
