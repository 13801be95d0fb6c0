package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const RequestIDKey contextKey = "requestID"

// requestIDHeader carries the correlation ID between client, server, and logs.
const requestIDHeader = "X-Request-ID"

// RequestID tags every request with a correlation ID. A well-formed ID
// supplied by the caller is kept so IDs survive across service hops;
// anything else is replaced with a fresh UUID. The ID is stored in the
// request context and echoed back on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}

		w.Header().Set(requestIDHeader, id)

		ctx := context.WithValue(r.Context(), RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the correlation ID stored by RequestID, or "" when
// the middleware did not run.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// GetRequestIDFromRequest is a convenience wrapper over GetRequestID.
func GetRequestIDFromRequest(r *http.Request) string {
	return GetRequestID(r.Context())
}
