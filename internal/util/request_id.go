package util

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

type ctxKey string

const (
	requestIDHeader = "X-Request-Id"
	ctxKeyRequestID = ctxKey("request_id")
)

// WithRequestID reuses the caller-supplied request id or mints a fresh one.
// The id is echoed on the response header and stored in the request context,
// together with a child slog.Logger carrying "request_id" so handlers can use
// LoggerFromContext for correlated logs.
func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = NewID()
		}
		w.Header().Set(requestIDHeader, id)

		ctx := context.WithValue(r.Context(), ctxKeyRequestID, id)
		ctx = ContextWithLogger(ctx, slog.Default().With("request_id", id))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext returns the request id stored by WithRequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKeyRequestID).(string)
	return id
}

// RequestIDFromRequest is RequestIDFromContext over the request's context.
func RequestIDFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	return RequestIDFromContext(r.Context())
}
