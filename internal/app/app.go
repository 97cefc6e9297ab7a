// Package app wires configuration, storage, analytics, and the HTTP surface
// into a runnable application.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"uidpulse/internal/analytics"
	"uidpulse/internal/config"
	"uidpulse/internal/infrastructure"
	"uidpulse/internal/llm"
	"uidpulse/internal/metrics"
	customMiddleware "uidpulse/internal/middleware"
	"uidpulse/internal/services"
	"uidpulse/internal/store"
	handlers "uidpulse/internal/transport/http"
)

// Version is set at build time.
var Version = "dev"

// Application is the main dependency container.
type Application struct {
	Config    *config.Config
	Router    *chi.Mux
	Server    *http.Server
	Store     *store.Store
	Data      *services.DataService
	Assistant *services.AssistantService
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// NewApplication loads configuration and builds the full service graph.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("version", Version),
		slog.Int("port", cfg.Server.Port))

	st, err := store.Open(cfg.Storage.DatabasePath, logger)
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}

	m := metrics.New()
	engine := analytics.NewEngine(logger)
	data := services.NewDataService(st, engine, m, logger)

	var assistantBackend llm.Assistant
	if cfg.Assistant.GeminiAPIKey != "" {
		assistantBackend = llm.NewGeminiClient(cfg.Assistant.GeminiAPIKey, cfg.Assistant.Model, logger)
	} else {
		logger.Warn("assistant API key not set, /api/ask will be unavailable")
	}
	assistant := services.NewAssistantService(assistantBackend, data, m, logger)

	a := &Application{
		Config:    cfg,
		Store:     st,
		Data:      data,
		Assistant: assistant,
		Metrics:   m,
		Logger:    logger,
	}
	a.setupRouter()
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return a, nil
}

// setupRouter configures the HTTP router with all routes.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	// Metrics endpoint stays outside the instrumented group.
	r.Handle("/metrics", a.Metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(a.Metrics.Instrument)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
			AllowedOrigins: a.Config.Security.AllowedOrigins,
		}))
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimitRPS,
			a.Config.Security.RateLimitBurst,
			a.Logger,
		).Handler)
		r.Use(customMiddleware.Compress(5))

		dataHandler := handlers.NewDataHandler(a.Data, a.Config.Storage.MaxUploadSize, a.Logger)
		assistantHandler := handlers.NewAssistantHandler(a.Assistant, a.Logger)
		healthHandler := handlers.NewHealthHandler(a.Data, a.Assistant, a.Logger)

		r.Route("/api", func(r chi.Router) {
			r.Use(render.SetContentType(render.ContentTypeJSON))

			r.Post("/upload", dataHandler.Upload)
			r.Get("/analytics/anomalies", dataHandler.GetAnomalies)
			r.Get("/analytics/states", dataHandler.GetStateTrends)
			r.Get("/analytics/advanced", dataHandler.GetInsights)
			r.Get("/dashboard/summary", dataHandler.GetDashboardSummary)
			r.Post("/check-status", dataHandler.CheckStatus)
			r.Post("/ask", assistantHandler.Ask)
			r.Get("/status", healthHandler.Status)
		})
	})

	a.Router = r
}

// Run starts the HTTP server and blocks until shutdown or failure.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("HTTP server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		a.Logger.Info("shutdown signal received")
		return a.Stop(context.Background())
	}
}

// Stop gracefully stops the application.
func (a *Application) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if err := a.Store.Close(); err != nil {
		a.Logger.Error("closing record store", slog.String("error", err.Error()))
	}
	infrastructure.CloseLogFile()
	a.Logger.Info("application stopped")
	return nil
}
