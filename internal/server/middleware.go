package server

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/bunkerdash/internal/logging"
)

// loggingMiddleware tags each request with a correlation id and logs its
// outcome.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, correlationID := logging.WithCorrelationID(r.Context())
		r = r.WithContext(ctx)
		w.Header().Set("X-Correlation-ID", correlationID)

		lrw := newLoggingResponseWriter(w)
		start := time.Now()
		next.ServeHTTP(lrw, r)
		elapsed := time.Since(start)

		entry := logging.ForContext(ctx).WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status_code": lrw.statusCode,
			"duration_ms": elapsed.Milliseconds(),
		})
		switch {
		case lrw.statusCode >= 500:
			entry.Error("request failed")
		case lrw.statusCode >= 400:
			entry.Warn("request rejected")
		default:
			entry.Debug("request served")
		}
	})
}

// recoverMiddleware turns handler panics into 500 responses.
func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				stack := make([]byte, 4096)
				stack = stack[:runtime.Stack(stack, false)]
				logging.ForContext(r.Context()).WithFields(logrus.Fields{
					"panic_error": fmt.Sprint(err),
					"path":        r.URL.Path,
					"stack_trace": string(stack),
				}).Error("panic in handler")
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newLoggingResponseWriter(w http.ResponseWriter) *loggingResponseWriter {
	return &loggingResponseWriter{w, http.StatusOK}
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

// Flush keeps the event stream working through the wrapper.
func (lrw *loggingResponseWriter) Flush() {
	if f, ok := lrw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
