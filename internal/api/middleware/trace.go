package middleware

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/cardgen/internal/api/shared"
	"github.com/phrazzld/cardgen/internal/platform/logger"
)

// TraceIDHeader carries the trace id in requests and responses.
const TraceIDHeader = "X-Trace-ID"

// Trace returns middleware that adds a trace ID and a request-scoped logger
// to the request context. A valid incoming X-Trace-ID is reused. It should
// be applied early in the middleware chain so that every handler can log
// with the trace id.
func Trace(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.WithTraceID(r.Context(), r.Header.Get(TraceIDHeader))
			traceID := shared.GetTraceID(ctx)

			log := logger.FromContextOrDefault(ctx, base).With(slog.String("trace_id", traceID))
			ctx = logger.WithLogger(ctx, log)

			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			w.Header().Set(TraceIDHeader, traceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
