package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/khabzox/fast-food/internal/store"
)

type contextKey int

const correlationIDKey contextKey = iota

// Header names used by the platform's SDKs.
const (
	HeaderProject = "X-Appwrite-Project"
	HeaderKey     = "X-Appwrite-Key"
)

// CorrelationID returns the correlation ID from the request context.
func CorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// Recovery returns middleware that recovers from panics and returns a 500
// error body.
func Recovery() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					slog.Error("panic recovered",
						"error", rec,
						"method", r.Method,
						"path", r.URL.Path,
					)
					corrID := CorrelationID(r.Context())
					WriteError(w, http.StatusInternalServerError,
						NewError(http.StatusInternalServerError, TypeServerError, "Server Error", corrID))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequestID returns middleware that generates a UUID v4 correlation ID, stores
// it in the request context, and adds it to the response headers.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := uuid.NewString()
			ctx := context.WithValue(r.Context(), correlationIDKey, id)
			w.Header().Set("X-Correlation-Id", id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// isPublic reports whether a request may skip API key checks: file views
// (public bucket URLs embedded in the app) and the metrics endpoint.
func isPublic(r *http.Request) bool {
	if r.URL.Path == "/metrics" {
		return true
	}
	return r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/view")
}

// Auth returns middleware that validates the X-Appwrite-Key header if apiKey
// is non-empty. If apiKey is empty, all requests pass through.
func Auth(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" || isPublic(r) {
				next.ServeHTTP(w, r)
				return
			}

			if r.Header.Get(HeaderKey) != apiKey {
				corrID := CorrelationID(r.Context())
				WriteError(w, http.StatusUnauthorized, NewError(http.StatusUnauthorized, TypeUnauthorized,
					"The current user or API key does not have the required scopes to access the requested resource.", corrID))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// JSONContentType returns middleware that defaults the Content-Type header to
// application/json. Handlers serving file content override it.
func JSONContentType() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			next.ServeHTTP(w, r)
		})
	}
}

// StatusWriter wraps http.ResponseWriter to capture the status code.
type StatusWriter struct {
	http.ResponseWriter
	Code int
}

// WriteHeader captures the status code and delegates to the wrapped writer.
func (sw *StatusWriter) WriteHeader(code int) {
	sw.Code = code
	sw.ResponseWriter.WriteHeader(code)
}

// Logging returns middleware that logs each request with slog.
func Logging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &StatusWriter{ResponseWriter: w, Code: http.StatusOK}
			next.ServeHTTP(sw, r)
			slog.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.Code,
				"duration", time.Since(start).String(),
			)
		})
	}
}

// RequestLog returns middleware that records every request in the request
// log served by the admin API. Recording failures are logged and ignored.
func RequestLog(requests store.RequestLogStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &StatusWriter{ResponseWriter: w, Code: http.StatusOK}
			next.ServeHTTP(sw, r)

			entry := store.RequestLogEntry{
				Method:        r.Method,
				Path:          r.URL.Path,
				StatusCode:    sw.Code,
				DurationMs:    time.Since(start).Milliseconds(),
				CorrelationID: CorrelationID(r.Context()),
			}
			if err := requests.Record(context.WithoutCancel(r.Context()), entry); err != nil {
				slog.Warn("record request", "error", err)
			}
		})
	}
}

// Chain applies middleware in order so that the first middleware is the
// outermost handler.
func Chain(handler http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}
