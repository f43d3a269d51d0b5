package handler

import (
	"net/http"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Debts & payoff simulation
// ============================================================

func listDebtsHandler(svc *service.DebtService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/debts")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		view, ok := ledgerView(w, r)
		if !ok {
			return
		}

		debts, err := svc.List(ctx, user.ID, view)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"debts": debts, "total": len(debts)})
	}
}

func createDebtHandler(svc *service.DebtService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/debts")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		var in domain.DebtInput
		if !decodeJSON(w, r, &in) {
			return
		}

		debt, err := svc.Create(ctx, user.ID, &in)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, debt)
	}
}

func updateDebtHandler(svc *service.DebtService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/debts/{debtId}")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		debtID := chi.URLParam(r, "debtId")
		span.SetAttributes(attribute.String("debt.id", debtID))

		var in domain.DebtInput
		if !decodeJSON(w, r, &in) {
			return
		}

		debt, err := svc.Update(ctx, user.ID, debtID, &in)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, debt)
	}
}

func deleteDebtHandler(svc *service.DebtService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/debts/{debtId}")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		if err := svc.Delete(ctx, user.ID, chi.URLParam(r, "debtId")); err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func simulateDebtsHandler(svc *service.DebtService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/debts/simulate")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		view, ok := ledgerView(w, r)
		if !ok {
			return
		}
		var req service.SimulationRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		span.SetAttributes(attribute.String("simulation.strategy", string(req.Strategy)))

		resp, err := svc.Simulate(ctx, user.ID, view, &req)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
