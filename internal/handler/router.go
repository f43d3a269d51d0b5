package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/infra/observability"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services groups everything the API routes call into.
type Services struct {
	Auth         *service.AuthService
	Debts        *service.DebtService
	Transactions *service.TransactionService
	Reconcile    *service.ReconcileService
	Rules        *service.RuleService
	Imports      *service.ImportService
	Budgets      *service.BudgetService
	Recurring    *service.RecurringService
	Alerts       *service.AlertService
	Summary      *service.SummaryService
}

// HealthCheck probes one dependency for /healthz.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// RouterOptions carries the optional pieces of the router.
type RouterOptions struct {
	Metrics      *observability.Metrics
	LoginLimiter *RateLimiter
	HealthChecks []HealthCheck
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svcs *Services, opts RouterOptions, logger *zap.Logger) http.Handler {
	if svcs == nil {
		svcs = &Services{}
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = observability.NewMetrics()
	}

	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.SentryMiddleware)
	r.Use(observability.ZapLoggerMiddleware(logger, metrics))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(opts.HealthChecks))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		if svcs.Auth == nil {
			r.Handle("/*", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeError(w, http.StatusServiceUnavailable, "auth service unavailable")
			}))
			return
		}

		// =============================================
		// Authentication (public)
		// =============================================
		r.Group(func(r chi.Router) {
			if opts.LoginLimiter != nil {
				r.Use(RateLimitMiddleware(opts.LoginLimiter, logger))
			}
			r.Post("/auth/login", authLoginHandler(svcs.Auth, logger))
		})

		// Everything below needs a bearer token.
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Auth, logger))

			r.Get("/auth/me", authMeHandler())
			r.Get("/metrics/summary", metricsSummaryHandler(metrics))

			// =============================================
			// Debts
			// =============================================
			if svcs.Debts != nil {
				r.Get("/debts", listDebtsHandler(svcs.Debts, logger))
				r.Post("/debts", createDebtHandler(svcs.Debts, logger))
				r.Post("/debts/simulate", simulateDebtsHandler(svcs.Debts, logger))
				r.Put("/debts/{debtId}", updateDebtHandler(svcs.Debts, logger))
				r.Delete("/debts/{debtId}", deleteDebtHandler(svcs.Debts, logger))
			}

			// =============================================
			// Transactions
			// =============================================
			if svcs.Transactions != nil {
				r.Get("/transactions", listTransactionsHandler(svcs.Transactions, logger))
				r.Post("/transactions", createTransactionHandler(svcs.Transactions, logger))
				r.Put("/transactions/{txId}", updateTransactionHandler(svcs.Transactions, logger))
				r.Delete("/transactions/{txId}", deleteTransactionHandler(svcs.Transactions, logger))
				r.Post("/transactions/{txId}/pay", payTransactionHandler(svcs.Transactions, logger))
			}
			if svcs.Reconcile != nil {
				r.Post("/transactions/reconcile", reconcileHandler(svcs.Reconcile, logger))
			}

			// =============================================
			// Categorization rules
			// =============================================
			if svcs.Rules != nil {
				r.Get("/rules", listRulesHandler(svcs.Rules, logger))
				r.Post("/rules", createRuleHandler(svcs.Rules, logger))
				r.Put("/rules/{ruleId}", updateRuleHandler(svcs.Rules, logger))
				r.Delete("/rules/{ruleId}", deleteRuleHandler(svcs.Rules, logger))
			}

			// =============================================
			// Statement imports
			// =============================================
			if svcs.Imports != nil {
				r.Route("/imports", func(r chi.Router) {
					r.Post("/upload", uploadStatementHandler(svcs.Imports, logger))
					r.Post("/parse", parseStatementHandler(svcs.Imports, logger))
					r.Get("/{batchId}", getBatchHandler(svcs.Imports, logger))
					r.Put("/{batchId}/rows/{rowId}", updateImportRowHandler(svcs.Imports, logger))
					r.Post("/{batchId}/apply-rule", applyRuleHandler(svcs.Imports, logger))
					r.Post("/{batchId}/commit", commitBatchHandler(svcs.Imports, logger))
					r.Post("/{batchId}/rollback", rollbackBatchHandler(svcs.Imports, logger))
				})
			}

			// =============================================
			// Budgets, alerts, summary, recurring
			// =============================================
			if svcs.Budgets != nil {
				r.Get("/budgets", listBudgetsHandler(svcs.Budgets, logger))
				r.Post("/budgets", createBudgetHandler(svcs.Budgets, logger))
				r.Put("/budgets/{budgetId}", updateBudgetHandler(svcs.Budgets, logger))
			}
			if svcs.Alerts != nil {
				r.Get("/alerts", listAlertsHandler(svcs.Alerts, logger))
			}
			if svcs.Summary != nil {
				r.Get("/summary", monthSummaryHandler(svcs.Summary, logger))
			}
			if svcs.Recurring != nil {
				r.Get("/recurring", listRecurringHandler(svcs.Recurring, logger))
				r.Post("/recurring", createRecurringHandler(svcs.Recurring, logger))
			}
		})
	})

	return r
}

// ============================================================
// Operational handlers
// ============================================================

func healthzHandler(checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "finance-bfa", Status: "healthy", LastChecked: now},
		}
		for _, c := range checks {
			start := time.Now()
			err := c.Check(ctx)
			sh := domain.ServiceHealth{
				Name:        c.Name,
				Status:      "healthy",
				LatencyMs:   time.Since(start).Milliseconds(),
				LastChecked: now,
			}
			if err != nil {
				sh.Status = "degraded"
				sh.Error = err.Error()
			}
			services = append(services, sh)
		}

		overall := "healthy"
		for _, s := range services {
			if s.Status == "degraded" {
				overall = "degraded"
				break
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{Status: overall, Services: services})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func metricsSummaryHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.Snapshot())
	}
}
