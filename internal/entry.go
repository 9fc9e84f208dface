// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/moodlog/internal/api"
	"github.com/starford/moodlog/internal/kv"
	"github.com/starford/moodlog/internal/ledger"
	"github.com/starford/moodlog/internal/sse"
	"github.com/starford/moodlog/internal/watch"
)

// Run starts the HTTP server, store watcher and SSE broker.
func Run(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config
	logger := app.logger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("store_driver", cfg.Store.Driver),
		slog.String("store_path", cfg.Store.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, store, err := app.openLedger(logger)
	if err != nil {
		return err
	}
	defer store.Close()

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Build API handler, page and router.
	h := api.NewHandler(svc, broker, cfg.Calendar.Name)
	page, err := api.NewPage(h, cfg.Calendar.Name)
	if err != nil {
		return err
	}
	apiRouter := api.NewRouter(h, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", readyHandler(store, cfg.Store.Key, broker))

	// Page, open it as /?access_token=... when auth is enabled.
	r.With(api.AuthMiddleware(cfg.Auth.AuthEnabled(), cfg.Auth.Token)).Get("/", page.ServeHTTP)

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	closeOnShutdown(httpServer, broker, logger)

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start store watcher with SSE callback.
	if target, ok := watchTarget(cfg.Store); ok {
		g.Go(func() error {
			err := watch.Watch(gCtx, target, watch.DefaultDebounce, logger, func(string) {
				broker.PublishStoreChanged()
			})
			if err != nil {
				logger.Warn("store watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// closeOnShutdown ends open SSE streams when srv shuts down. Shutdown waits
// for active handlers, and streams never finish on their own.
func closeOnShutdown(srv *http.Server, broker *sse.Broker, logger *slog.Logger) {
	srv.RegisterOnShutdown(func() {
		logger.Info("Closing SSE clients", slog.Int("clients", broker.ClientCount()))
		broker.Close()
	})
}

// readyHandler reports whether the store can be read, and the number of
// connected SSE clients.
func readyHandler(store kv.Store, key string, broker *sse.Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := store.Get(r.Context(), key); err != nil && !errors.Is(err, kv.ErrNotFound) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"store unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"status":"ok","sse_clients":%d}`, broker.ClientCount())
	}
}

// errShutdown cancels the group so the watcher exits with the server.
var errShutdown = errors.New("shutdown")

// logger builds the structured JSON logger and installs it as the default.
func (a *application) logger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(a.logOutput, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// openLedger opens the configured store and builds the ledger service on it.
func (a *application) openLedger(logger *slog.Logger) (*ledger.Service, kv.Store, error) {
	cfg := a.config
	loc, err := cfg.Calendar.Location()
	if err != nil {
		return nil, nil, fmt.Errorf("calendar timezone: %w", err)
	}

	if cfg.Store.Driver == kv.DriverBolt || cfg.Store.Driver == kv.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	store, err := kv.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init store: %w", err)
	}

	svc := ledger.NewService(store,
		ledger.WithKey(cfg.Store.Key),
		ledger.WithMoods(cfg.MoodSet()),
		ledger.WithLocation(loc),
		ledger.WithLogger(logger),
	)
	return svc, store, nil
}

// watchTarget returns the files backing the store. The memory driver has none.
func watchTarget(c StoreConfig) (watch.Target, bool) {
	switch c.Driver {
	case kv.DriverFile:
		return watch.Target{Dir: c.Path, Prefix: kv.FileName(c.Key)}, true
	case kv.DriverBolt, kv.DriverSQLite:
		return watch.Target{Dir: filepath.Dir(c.Path), Prefix: filepath.Base(c.Path)}, true
	default:
		return watch.Target{}, false
	}
}
