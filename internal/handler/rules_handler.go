package handler

import (
	"net/http"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Categorization rules
// ============================================================

func listRulesHandler(svc *service.RuleService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/rules")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		view, ok := ledgerView(w, r)
		if !ok {
			return
		}

		rules, err := svc.List(ctx, user.ID, view)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"rules": rules, "total": len(rules)})
	}
}

func createRuleHandler(svc *service.RuleService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/rules")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		var in domain.RuleInput
		if !decodeJSON(w, r, &in) {
			return
		}

		rule, err := svc.Create(ctx, user.ID, &in)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, rule)
	}
}

func updateRuleHandler(svc *service.RuleService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/rules/{ruleId}")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		var in domain.RuleInput
		if !decodeJSON(w, r, &in) {
			return
		}

		rule, err := svc.Update(ctx, user.ID, chi.URLParam(r, "ruleId"), &in)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rule)
	}
}

func deleteRuleHandler(svc *service.RuleService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/rules/{ruleId}")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		if err := svc.Delete(ctx, user.ID, chi.URLParam(r, "ruleId")); err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
