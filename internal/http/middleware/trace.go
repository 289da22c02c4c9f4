package middleware

import (
	"net/http"
	"time"

	"github.com/davidbz/ghostline/internal/observability"
)

const (
	traceHeader   = "X-Trace-Id"
	requestHeader = "X-Request-Id"
)

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Trace creates a middleware that injects trace, span and request IDs into
// every request and logs its result. An editor-supplied X-Request-Id is kept
// so both sides can correlate logs.
func Trace() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			start := time.Now()

			traceID := observability.GenerateTraceID()
			ctx = observability.WithTraceID(ctx, traceID)
			ctx = observability.WithSpanID(ctx, observability.GenerateSpanID())

			requestID := r.Header.Get(requestHeader)
			if requestID == "" {
				requestID = observability.GenerateRequestID()
			}
			ctx = observability.WithRequestID(ctx, requestID)

			w.Header().Set(traceHeader, traceID)
			w.Header().Set(requestHeader, requestID)

			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r.WithContext(ctx))

			observability.FromContext(ctx).Info("request handled",
				observability.String("method", r.Method),
				observability.String("path", r.URL.Path),
				observability.Int("status", recorder.status),
				observability.Duration("duration", time.Since(start)))
		})
	}
}
