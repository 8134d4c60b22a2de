// Package feedbackservice assembles and runs the MoodMate feedback HTTP service.
package feedbackservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/light11014/Moodmate-Backend/internal/ai"
	"github.com/light11014/Moodmate-Backend/internal/api"
	"github.com/light11014/Moodmate-Backend/internal/auth"
	"github.com/light11014/Moodmate-Backend/internal/config"
	"github.com/light11014/Moodmate-Backend/internal/factory"
	"github.com/light11014/Moodmate-Backend/internal/health"
	"github.com/light11014/Moodmate-Backend/internal/logger"
	"github.com/light11014/Moodmate-Backend/internal/quota"
	"github.com/light11014/Moodmate-Backend/internal/services"
	"github.com/light11014/Moodmate-Backend/internal/store"
)

// dependencies are the long-lived components behind the HTTP layer.
type dependencies struct {
	store    store.Store
	ledger   quota.Ledger
	analyzer *ai.Instrumented
	closers  []factory.Closer
}

func (d *dependencies) close(log zerolog.Logger) {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			log.Warn().Err(err).Msg("dependency close failed")
		}
	}
}

// Run starts the feedback service HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("feedback-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Str("db_driver", cfg.DBDriver).
		Str("quota_backend", cfg.QuotaBackend).
		Str("ai_provider", cfg.AIProvider).
		Int("http_port", cfg.HTTPPort).
		Int("daily_feedback_limit", cfg.DailyFeedbackLimit).
		Msg("Feedback service starting")

	// Create cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	deps, err := initDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer deps.close(log)

	svcHealth := startHealthCheckers(ctx, cfg, log, deps)
	router := buildRouter(cfg, log, deps, svcHealth)

	// Block startup until dependencies report healthy; fail fast otherwise
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	// Graceful shutdown on context cancel or server error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// initDependencies constructs required components and enforces fail-fast on missing deps.
func initDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*dependencies, error) {
	d := &dependencies{}

	st, closeStore, err := factory.NewStore(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store adapter unavailable")
		return nil, err
	}
	d.store = st
	d.closers = append(d.closers, closeStore)

	ledger, closeLedger, err := factory.NewLedger(ctx, cfg, st, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Quota ledger unavailable")
		d.close(log)
		return nil, err
	}
	d.ledger = ledger
	d.closers = append(d.closers, closeLedger)

	analyzer, err := factory.NewAnalyzer(cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("AI provider unavailable")
		d.close(log)
		return nil, err
	}
	d.analyzer = analyzer
	return d, nil
}

// buildRouter wires services to HTTP routes.
func buildRouter(cfg *config.Config, log zerolog.Logger, d *dependencies, svcHealth *health.ServiceHealthChecker) http.Handler {
	feedback := services.NewFeedbackService(d.store, d.ledger, d.analyzer, log, services.FeedbackOptions{
		DailyLimit: cfg.DailyFeedbackLimit,
		AITimeout:  cfg.AITimeout(),
		Location:   cfg.Location(),
	})
	analysis := services.NewAnalysisService(d.store, d.analyzer, log, services.AnalysisOptions{
		AITimeout:     cfg.AITimeout(),
		Location:      cfg.Location(),
		MaxPeriodDays: cfg.MaxPeriodDays,
	})
	return api.NewRouter(api.Deps{
		Feedback:  feedback,
		Analysis:  analysis,
		Diaries:   services.NewDiaryService(d.store, log),
		Users:     services.NewUserService(d.store, log),
		Tokens:    auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, 24*time.Hour),
		Health:    svcHealth,
		DevTokens: cfg.IsDevelopment(),
	})
}

// startHealthCheckers starts component checkers and the service-level aggregator.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, d *dependencies) *health.ServiceHealthChecker {
	var checkers []health.HealthChecker
	probeTimeout := cfg.HealthProbeTimeout()
	interval := cfg.HealthInterval()

	add := func(name string, target any) {
		p, ok := target.(health.HealthPinger)
		if !ok {
			return
		}
		c := health.NewPingChecker(name, p, log, probeTimeout)
		go c.Start(ctx, interval)
		checkers = append(checkers, c)
	}
	add("store", d.store)
	add("quota", d.ledger)
	add("ai", d.analyzer)

	svcHealth := health.NewServiceHealthChecker(log, checkers...)
	go svcHealth.Start(ctx, interval)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		// period analysis runs several AI calls
		WriteTimeout: cfg.AITimeout() + 15*time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// startupHealthTimeout is twice the probe interval, at least 60 seconds.
func startupHealthTimeout(interval time.Duration) time.Duration {
	timeout := 2 * interval
	if timeout < 60*time.Second {
		return 60 * time.Second
	}
	return timeout
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	timeout := startupHealthTimeout(cfg.HealthInterval())
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %s", timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
