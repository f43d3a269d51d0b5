package handler

import (
	"net/http"
	"time"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Budgets, alerts & monthly summary
// ============================================================

func listBudgetsHandler(svc *service.BudgetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/budgets")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		view, ok := ledgerView(w, r)
		if !ok {
			return
		}

		budgets, err := svc.List(ctx, user.ID, view)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"budgets": budgets, "total": len(budgets)})
	}
}

func createBudgetHandler(svc *service.BudgetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/budgets")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		var in domain.BudgetInput
		if !decodeJSON(w, r, &in) {
			return
		}

		budget, err := svc.Create(ctx, user.ID, &in)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, budget)
	}
}

func updateBudgetHandler(svc *service.BudgetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/budgets/{budgetId}")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		var in domain.BudgetInput
		if !decodeJSON(w, r, &in) {
			return
		}

		budget, err := svc.Update(ctx, user.ID, chi.URLParam(r, "budgetId"), &in)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, budget)
	}
}

func listAlertsHandler(svc *service.AlertService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/alerts")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		view, ok := ledgerView(w, r)
		if !ok {
			return
		}

		alerts, err := svc.List(ctx, user.ID, view, time.Now())
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts, "total": len(alerts)})
	}
}

// GET /v1/summary?month=YYYY-MM&ledger=
func monthSummaryHandler(svc *service.SummaryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/summary")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		view, ok := ledgerView(w, r)
		if !ok {
			return
		}
		month, err := service.ParseMonth(r.URL.Query().Get("month"), time.Now())
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}

		summary, err := svc.Month(ctx, user.ID, view, month)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

// ============================================================
// Recurring bills
// ============================================================

func listRecurringHandler(svc *service.RecurringService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/recurring")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		view, ok := ledgerView(w, r)
		if !ok {
			return
		}

		recs, err := svc.List(ctx, user.ID, view)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"recurring": recs, "total": len(recs)})
	}
}

func createRecurringHandler(svc *service.RecurringService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/recurring")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		var in domain.RecurrenceInput
		if !decodeJSON(w, r, &in) {
			return
		}

		rec, txs, err := svc.Create(ctx, user.ID, &in)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"recurrence": rec, "transactions": txs})
	}
}
