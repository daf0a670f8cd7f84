package middleware

import (
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/task-api/internal/api/shared"
	"github.com/phrazzld/task-api/internal/platform/logger"
)

// TraceMiddleware adds a trace ID to the request context and the X-Trace-ID
// response header, and attaches a request-scoped logger carrying it.
// It reuses chi's request ID when the RequestID middleware ran first.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if reqID := chimw.GetReqID(ctx); reqID != "" {
			ctx = shared.WithTraceID(ctx, reqID)
		} else {
			ctx = shared.SetTraceID(ctx)
		}

		traceID := shared.GetTraceID(ctx)
		ctx = logger.WithRequestID(ctx, traceID)
		w.Header().Set(shared.TraceIDHeader, traceID)

		logger.FromContext(ctx).Debug("request started",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
