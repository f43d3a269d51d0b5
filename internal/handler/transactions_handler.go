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
// Transactions
// ============================================================

// GET /v1/transactions?ledger=&from=&to=&status=&type=
func listTransactionsHandler(svc *service.TransactionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/transactions")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		view, ok := ledgerView(w, r)
		if !ok {
			return
		}

		filter := domain.TransactionFilter{
			UserID: user.ID,
			View:   view,
			Status: domain.TransactionStatus(r.URL.Query().Get("status")),
			Type:   domain.TransactionType(r.URL.Query().Get("type")),
		}
		var err error
		if filter.From, err = queryDate(r, "from"); err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		if filter.To, err = queryDate(r, "to"); err != nil {
			handleServiceError(w, r, err, logger)
			return
		}

		txs, err := svc.List(ctx, filter)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"transactions": txs, "total": len(txs)})
	}
}

func createTransactionHandler(svc *service.TransactionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/transactions")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		var in domain.TransactionInput
		if !decodeJSON(w, r, &in) {
			return
		}

		tx, err := svc.Create(ctx, user.ID, &in)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, tx)
	}
}

func updateTransactionHandler(svc *service.TransactionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/transactions/{txId}")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		txID := chi.URLParam(r, "txId")
		span.SetAttributes(attribute.String("transaction.id", txID))

		var in domain.TransactionInput
		if !decodeJSON(w, r, &in) {
			return
		}

		tx, err := svc.Update(ctx, user.ID, txID, &in)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, tx)
	}
}

func deleteTransactionHandler(svc *service.TransactionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/transactions/{txId}")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		if err := svc.Delete(ctx, user.ID, chi.URLParam(r, "txId")); err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func payTransactionHandler(svc *service.TransactionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/transactions/{txId}/pay")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		// The body is optional; without it the payment is dated today.
		var req struct {
			Date string `json:"date"`
		}
		if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
			return
		}

		tx, err := svc.MarkPaid(ctx, user.ID, chi.URLParam(r, "txId"), req.Date)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, tx)
	}
}

// POST /v1/transactions/reconcile
func reconcileHandler(svc *service.ReconcileService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/transactions/reconcile")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		var req struct {
			Ledger       string                     `json:"mode"`
			Transactions []domain.ParsedTransaction `json:"transactions"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		ledger, err := domain.ParseLedger(req.Ledger)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		span.SetAttributes(attribute.Int("reconcile.items", len(req.Transactions)))

		result, err := svc.Import(ctx, user.ID, ledger, req.Transactions)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}
