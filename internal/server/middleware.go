package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

type loggerKey struct{}

// Logger attaches a request-scoped slog logger to the context and logs each
// request once it completes.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			reqLogger := logger.With(
				"method", req.Method,
				"path", req.URL.Path,
				"remote_ip", req.RemoteAddr,
			)
			if id := middleware.GetReqID(req.Context()); id != "" {
				reqLogger = reqLogger.With("request_id", id)
			}

			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			start := time.Now()

			ctx := context.WithValue(req.Context(), loggerKey{}, reqLogger)
			next.ServeHTTP(ww, req.WithContext(ctx))

			reqLogger.Debug("request served",
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start))
		})
	}
}

// loggerFrom returns the request logger, or the default logger outside a request.
func loggerFrom(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
