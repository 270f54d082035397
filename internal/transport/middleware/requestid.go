package middleware

import (
	"net/http"

	"github.com/sciadvances/catalog-api/pkg/logger"

	"github.com/google/uuid"
)

// RequestID assigns a trace id to each request, honoring one supplied by the
// caller, and scopes the context logger to it. The id is echoed back on the
// response so the logging middleware and clients can correlate.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := logger.With(r.Context(), "traceID", traceID)
		w.Header().Set("X-Trace-ID", traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
