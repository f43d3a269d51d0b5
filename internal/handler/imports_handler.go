package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/service"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/statement"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Statement imports
// ============================================================

// POST /v1/imports/upload (multipart: file, ledger_type)
func uploadStatementHandler(svc *service.ImportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/imports/upload")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, service.MaxUploadBytes+1<<20)
		if err := r.ParseMultipartForm(service.MaxUploadBytes); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "file too large")
				return
			}
			writeError(w, http.StatusBadRequest, "expected multipart form with a file field")
			return
		}
		ledger, err := domain.ParseLedger(r.FormValue("ledger_type"))
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "file is required")
			return
		}
		defer func() { _ = file.Close() }()

		data, err := io.ReadAll(io.LimitReader(file, service.MaxUploadBytes+1))
		if err != nil {
			writeError(w, http.StatusBadRequest, "could not read file")
			return
		}
		span.SetAttributes(attribute.String("file.name", header.Filename))

		f, err := svc.Upload(ctx, user.ID, header.Filename, ledger, header.Header.Get("Content-Type"), data)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, f)
	}
}

// POST /v1/imports/parse {file_id, source_type}
func parseStatementHandler(svc *service.ImportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/imports/parse")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		var req struct {
			FileID     string `json:"file_id"`
			SourceType string `json:"source_type"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.FileID == "" {
			writeError(w, http.StatusBadRequest, "file_id is required")
			return
		}
		source, err := statement.ParseSourceType(req.SourceType)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}

		batch, summary, err := svc.Parse(ctx, user.ID, req.FileID, source)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"batch": batch, "summary": summary})
	}
}

func getBatchHandler(svc *service.ImportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/imports/{batchId}")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		detail, err := svc.GetBatch(ctx, user.ID, chi.URLParam(r, "batchId"))
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

func updateImportRowHandler(svc *service.ImportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/imports/{batchId}/rows/{rowId}")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		var upd domain.RowUpdate
		if !decodeJSON(w, r, &upd) {
			return
		}

		row, err := svc.UpdateRow(ctx, user.ID, chi.URLParam(r, "batchId"), chi.URLParam(r, "rowId"), &upd)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, row)
	}
}

func applyRuleHandler(svc *service.ImportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/imports/{batchId}/apply-rule")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		var in domain.RuleInput
		if !decodeJSON(w, r, &in) {
			return
		}

		rule, updated, err := svc.ApplyRule(ctx, user.ID, chi.URLParam(r, "batchId"), &in)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"rule": rule, "updated_rows": updated})
	}
}

func commitBatchHandler(svc *service.ImportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/imports/{batchId}/commit")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		batchID := chi.URLParam(r, "batchId")
		count, err := svc.Commit(ctx, user.ID, batchID)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"batch_id": batchID, "imported": count})
	}
}

func rollbackBatchHandler(svc *service.ImportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/imports/{batchId}/rollback")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		batchID := chi.URLParam(r, "batchId")
		deleted, err := svc.Rollback(ctx, user.ID, batchID)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"batch_id": batchID, "deleted": deleted})
	}
}
