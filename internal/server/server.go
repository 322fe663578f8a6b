// Package server exposes the payee report over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Veraticus/payee-flow/internal/config"
	"github.com/Veraticus/payee-flow/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultShutdownTimeout bounds how long outstanding requests may run after shutdown starts.
const DefaultShutdownTimeout = 10 * time.Second

// WebAPI is the HTTP front end of the ledger.
type WebAPI struct {
	router          *chi.Mux
	logger          *slog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

// Dependencies are the collaborators the handlers need.
type Dependencies struct {
	Ledger   service.LedgerReader
	Clock    func() time.Time
	Defaults config.ReportSettings
}

// Config configures the WebAPI.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

// NewWebAPI builds the router and HTTP server.
func NewWebAPI(logger *slog.Logger, cfg Config) *WebAPI {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "server")

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}

	reports := NewReportHandler(cfg.Dependencies)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(Logger(logger))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/reports/payees", reports.PayeeReport)
	})

	return &WebAPI{
		router:          router,
		logger:          logger,
		shutdownTimeout: cfg.ShutdownTimeout,
		server: &http.Server{
			Addr:              cfg.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler returns the router, for tests and embedding.
func (w *WebAPI) Handler() http.Handler {
	return w.router
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (w *WebAPI) Start(ctx context.Context) error {
	serverErrors := make(chan error, 1)

	go func() {
		w.logger.Info("starting server", "addr", w.server.Addr)
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		w.logger.Info("shutdown initiated")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(shutdownCtx)
		if err != nil {
			w.logger.Error("graceful shutdown failed", "error", err)
			err = w.server.Close()
		}
		return err
	}
}
