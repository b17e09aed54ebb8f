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
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/veritext/veritext/internal/api"
	"github.com/veritext/veritext/internal/corpus"
	"github.com/veritext/veritext/internal/extract"
	"github.com/veritext/veritext/internal/grammar"
	"github.com/veritext/veritext/internal/ignorelist"
	"github.com/veritext/veritext/internal/mcpserver"
	"github.com/veritext/veritext/internal/models"
	"github.com/veritext/veritext/internal/pipeline"
	"github.com/veritext/veritext/internal/plagiarism"
	"github.com/veritext/veritext/internal/sse"
	"github.com/veritext/veritext/internal/storage"
	"github.com/veritext/veritext/internal/store"
)

// Run starts the HTTP application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, cfg, err := buildApplication(opts)
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("corpus_dir", cfg.Corpus.Dir),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker bridging pipeline events to connected clients.
	broker := sse.NewBroker()
	defer broker.Close()

	svc, refs, db, err := buildService(app, cfg, func(kind, essayID string, status models.EssayStatus) {
		broker.PublishEssayEvent(kind, essayID, string(status))
	})
	if err != nil {
		return err
	}
	defer db.Close()

	lists := ignorelist.NewService(db)
	apiRouter := api.NewRouter(svc, lists, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Reference corpus watcher for hot reloads.
	if cfg.Corpus.Watch {
		g.Go(func() error {
			if err := corpus.Watch(gCtx, refs, logger); err != nil {
				logger.Warn("corpus watcher failed", slog.String("error", err.Error()))
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

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP starts the MCP stdio server instead of the HTTP server.
func RunMCP(_ context.Context, opts ...Option) error {
	app, cfg, err := buildApplication(opts)
	if err != nil {
		return err
	}

	// MCP owns stdout; keep logs on stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	svc, _, db, err := buildService(app, cfg, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	logger.Info("Starting MCP stdio server")
	return mcpserver.New(svc).ServeStdio()
}

func buildApplication(opts []Option) (*application, *Config, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, nil, fmt.Errorf("config is required")
	}
	if app.engine == nil {
		app.engine = grammar.NewRuleEngine()
	}
	return app, app.config, nil
}

func newLogger(cfg *Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

func buildService(app *application, cfg *Config, notify pipeline.EventFunc) (*pipeline.Service, *corpus.Dir, *store.DB, error) {
	files, err := storage.NewFS(cfg.Uploads.Dir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init uploads storage: %w", err)
	}

	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init store: %w", err)
	}

	refs, err := corpus.NewDir(cfg.Corpus.Dir)
	if err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("init corpus: %w", err)
	}

	detector := plagiarism.NewDetector(
		cfg.Pipeline.SimilarityThreshold,
		cfg.Pipeline.MinChunkLength,
		cfg.Pipeline.Workers,
	)
	lists := ignorelist.NewService(db)

	svc := pipeline.NewService(
		db,
		files,
		extract.NewPlainText(),
		app.engine,
		detector,
		refs,
		lists,
		cfg.Pipeline.StageTimeout(),
		notify,
	)
	return svc, refs, db, nil
}
