package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// redactedFields are payload keys and header names whose values never reach
// the logs. Login bodies and user create/update bodies carry credentials, and
// every authenticated request carries a bearer token.
var redactedFields = []string{
	"password",
	"access_token",
	"token",
	"authorization",
	"secret",
	"credential",
}

// LoggingMiddleware logs each request and its response at a level matching
// the status class, with credentials redacted from headers and JSON bodies.
func LoggingMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// set by the RequestID middleware, which runs first
			traceID := w.Header().Get("X-Trace-ID")

			var reqBody []byte
			if r.Body != nil {
				reqBody, _ = io.ReadAll(r.Body)
				r.Body = io.NopCloser(bytes.NewReader(reqBody))
			}

			logger.Info("request",
				"trace_id", traceID,
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"remote_addr", r.RemoteAddr,
				"headers", redactHeaders(r.Header),
				"body", redactBody(reqBody),
			)

			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}

			logger.Log(r.Context(), level, "response",
				"trace_id", traceID,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"bytes", rec.written,
			)
		})
	}
}

// statusRecorder remembers the status code and byte count written downstream.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	n, err := s.ResponseWriter.Write(b)
	s.written += n
	return n, err
}

func isRedacted(name string) bool {
	lower := strings.ToLower(name)
	for _, f := range redactedFields {
		if strings.Contains(lower, f) {
			return true
		}
	}
	return false
}

func redactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		if isRedacted(name) {
			out[name] = "[REDACTED]"
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

// redactBody renders a JSON body with credential fields masked. Non-JSON
// bodies are dropped entirely rather than scanned.
func redactBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "[non-JSON body omitted]"
	}
	masked, err := json.Marshal(redactValue(parsed))
	if err != nil {
		return ""
	}
	return string(masked)
}

func redactValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if isRedacted(k) {
				out[k] = "[REDACTED]"
				continue
			}
			out[k] = redactValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = redactValue(item)
		}
		return out
	default:
		return val
	}
}
