package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"climbingpill/internal/assessment"
	"climbingpill/internal/config"
	"climbingpill/internal/dataprocessing"
	"climbingpill/internal/infrastructure"
	customMiddleware "climbingpill/internal/middleware"
	"climbingpill/internal/services"
	transport "climbingpill/internal/transport/http"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// Application wires together all components of the analytics web
// service.
type Application struct {
	Config        *config.Config
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Router        chi.Router
	Server        *http.Server

	Analytics *services.AnalyticsService
	Health    *services.HealthService

	refreshCancel context.CancelFunc
}

// New builds the full application from configuration.
func New() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("initialize opentelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
	}

	if err := app.initializeServices(); err != nil {
		return nil, err
	}
	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices builds the analytics pipeline: loader, parser,
// summarizer and the services on top of them.
func (a *Application) initializeServices() error {
	loader, err := services.NewSourceLoader(context.Background(), a.Config.Sources, a.Logger)
	if err != nil {
		return fmt.Errorf("create source loader: %w", err)
	}

	scorer, err := assessment.NewScorer(assessment.DefaultWeights(), a.Logger)
	if err != nil {
		return fmt.Errorf("create scorer: %w", err)
	}

	parser := dataprocessing.NewParser(scorer, a.Logger)
	summarizer := dataprocessing.NewSummarizer(a.Logger, dataprocessing.DefaultSummarizerConfig())

	a.Analytics = services.NewAnalyticsService(loader, parser, summarizer, a.Logger)
	a.Health = services.NewHealthService(Version, a.Analytics, a.Logger)

	return nil
}

// setupRouter configures the chi router with the full middleware chain.
// Ordering: RequestID → RealIP → OTel → Logger → Recoverer → the rest.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StripSlashes)

	r.Group(func(r chi.Router) {
		if a.OTelProviders != nil && a.OTelProviders.Meter != nil && a.OTelProviders.Tracer != nil {
			otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
			if err != nil {
				a.Logger.Error("failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
			} else {
				r.Use(otelMiddleware.Handler)
				a.Analytics.WithMetrics(otelMiddleware.Metrics())
			}
		}

		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
			AllowedOrigins: a.Config.Server.AllowedOrigins,
			Logger:         a.Logger,
		}))
		r.Use(customMiddleware.SecurityHeaders)
		r.Use(customMiddleware.Compress(5))

		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Server.RateLimitRPS,
			a.Config.Server.RateLimitBurst,
			a.Logger,
		).Handler)

		validation := customMiddleware.NewValidationMiddleware(a.Logger)
		r.Use(validation.ValidateRequest)

		r.Route("/api", func(r chi.Router) {
			r.Mount("/health", transport.NewHealthHandler(a.Health, a.Logger).Routes())
			r.Mount("/analytics", transport.NewAnalyticsHandler(a.Analytics, a.Logger).Routes())
		})
	})

	// Prometheus scrape endpoint, outside the middleware group.
	if a.OTelProviders != nil && a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start derives the initial snapshot, starts the HTTP server and the
// periodic refresh loop. A failed initial load is logged but does not
// abort startup; the readiness check stays negative until a refresh
// succeeds.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "starting application",
		slog.String("version", Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("source_mode", a.Config.Sources.Mode),
		slog.String("log_level", a.Config.Logging.Level))

	if err := a.Analytics.Refresh(ctx); err != nil {
		a.Logger.WarnContext(ctx, "initial snapshot load failed, serving not-ready until refresh succeeds",
			slog.String("error", err.Error()))
	}

	refreshCtx, refreshCancel := context.WithCancel(context.Background())
	a.refreshCancel = refreshCancel
	if interval := a.Config.Sources.RefreshInterval; interval > 0 {
		go a.refreshLoop(refreshCtx, interval)
	}

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))

	return nil
}

// refreshLoop re-derives the snapshot on the configured interval.
func (a *Application) refreshLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.Analytics.Refresh(ctx); err != nil {
				a.Logger.ErrorContext(ctx, "periodic refresh failed",
					slog.String("error", err.Error()))
			}
		}
	}
}

// Stop gracefully stops the application.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	if a.refreshCancel != nil {
		a.refreshCancel()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "telemetry shutdown error", slog.String("error", err.Error()))
		}
	}

	infrastructure.CloseLogFile()

	a.Logger.InfoContext(ctx, "application stopped")
	return nil
}

// Run starts the application and blocks until a termination signal.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.Logger.Info("received signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}
