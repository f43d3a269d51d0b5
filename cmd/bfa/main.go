package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/config"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/handler"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/infra/cache"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/infra/observability"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/infra/sqlite"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/infra/supabase"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/port"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/service"

	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// backend is everything the services need from the persistence layer.
type backend struct {
	store  port.Store
	files  port.FileStorage
	authn  port.Authenticator
	checks []handler.HealthCheck
	close  func()
}

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("store_backend", cfg.StoreBackend),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Bool("redis_cache", cfg.RedisAddr != ""),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
		zap.Int("allowed_emails", len(cfg.AllowedEmails)),
	)
	if len(cfg.AllowedEmails) == 0 {
		logger.Warn("ALLOWED_EMAILS is empty: nobody will be able to log in")
	}

	// --- Error reporting ---
	flushSentry := observability.InitSentry(cfg.SentryDSN, cfg.SentryEnvironment, version, logger)
	defer flushSentry()

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.TracingEndpoint(), "finance-bfa")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer func() { _ = shutdown(context.Background()) }()

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Persistence ---
	be, err := openBackend(cfg, metrics, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer be.close()

	// --- Cache ---
	var ruleCache port.Cache[[]domain.CategorizationRule]
	if cfg.RedisAddr != "" {
		rc := cache.NewRedis[[]domain.CategorizationRule](cfg.RedisAddr, "finance-bfa:rules:", cfg.CacheTTL, logger)
		defer func() { _ = rc.Close() }()
		ruleCache = rc
		be.checks = append(be.checks, handler.HealthCheck{Name: "redis", Check: rc.Ping})
		logger.Info("rules cache: redis", zap.String("addr", cfg.RedisAddr))
	} else {
		mc := cache.New[[]domain.CategorizationRule](cfg.CacheTTL)
		defer mc.Close()
		ruleCache = mc
	}

	// --- Services ---
	rules := service.NewRuleService(be.store, ruleCache, metrics, logger)
	svcs := &handler.Services{
		Auth:         service.NewAuthService(be.authn, cfg.AllowedEmails, cfg.JWTSecret, cfg.JWTAccessTTL, logger),
		Debts:        service.NewDebtService(be.store, metrics, logger),
		Transactions: service.NewTransactionService(be.store, logger),
		Reconcile:    service.NewReconcileService(be.store, metrics, logger),
		Rules:        rules,
		Imports: service.NewImportService(be.store, be.store, be.files, rules,
			resilience.NewBulkhead(cfg.MaxConcurrency), metrics, logger),
		Budgets:   service.NewBudgetService(be.store, logger),
		Recurring: service.NewRecurringService(be.store, be.store, logger),
		Alerts:    service.NewAlertService(be.store, be.store, be.store, logger),
		Summary:   service.NewSummaryService(be.store, be.store, logger),
	}

	loginLimiter := handler.NewRateLimiter(cfg.LoginRateLimit, time.Minute)
	defer loginLimiter.Stop()

	// --- Router ---
	router := handler.NewRouter(svcs, handler.RouterOptions{
		Metrics:      metrics,
		LoginLimiter: loginLimiter,
		HealthChecks: be.checks,
	}, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

func openBackend(cfg *config.Config, metrics *observability.Metrics, logger *zap.Logger) (*backend, error) {
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		store, err := sqlite.Open(cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("using SQLite as data backend", zap.String("path", cfg.SQLitePath))
		return &backend{
			store:  store,
			files:  store,
			authn:  store,
			checks: []handler.HealthCheck{{Name: "sqlite", Check: store.Ping}},
			close:  func() { _ = store.Close() },
		}, nil

	case config.BackendSupabase:
		if cfg.SupabaseURL == "" || cfg.SupabaseServiceKey == "" {
			return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY are required for the supabase backend")
		}
		httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
		client := supabase.NewClient(
			httpClient,
			cfg.SupabaseURL,
			cfg.SupabaseAnonKey,
			cfg.SupabaseServiceKey,
			resilience.NewCircuitBreaker("supabase"),
			resilience.Config{
				MaxRetries:     cfg.MaxRetries,
				InitialBackoff: cfg.InitialBackoff,
				MaxConcurrency: cfg.MaxConcurrency,
			},
			metrics,
			logger,
		)
		storage := supabase.NewStorage(httpClient, cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseBucket, cfg.MaxRetries, logger)
		logger.Info("using Supabase as data backend",
			zap.String("supabase_url", cfg.SupabaseURL),
			zap.String("bucket", cfg.SupabaseBucket),
		)
		return &backend{
			store:  client,
			files:  storage,
			authn:  client,
			checks: []handler.HealthCheck{{Name: "supabase", Check: client.Ping}},
			close:  func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown STORE_BACKEND %q (supabase or sqlite)", cfg.StoreBackend)
}
