package service

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/infra/observability"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/port"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/statement"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MaxUploadBytes bounds a single statement upload.
const MaxUploadBytes = 10 << 20

// ImportService runs the statement import pipeline:
// upload → parse → review → commit, with rollback of a whole batch.
type ImportService struct {
	store    port.ImportStore
	txs      port.TransactionStore
	files    port.FileStorage
	rules    *RuleService
	bulkhead *resilience.Bulkhead
	metrics  *observability.Metrics
	logger   *zap.Logger
}

func NewImportService(
	store port.ImportStore,
	txs port.TransactionStore,
	files port.FileStorage,
	rules *RuleService,
	bulkhead *resilience.Bulkhead,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ImportService {
	return &ImportService{
		store:    store,
		txs:      txs,
		files:    files,
		rules:    rules,
		bulkhead: bulkhead,
		metrics:  metrics,
		logger:   logger,
	}
}

// ============================================================
// Upload — POST /v1/imports/upload
// ============================================================

func (s *ImportService) Upload(ctx context.Context, userID, name string, ledger domain.Ledger, contentType string, data []byte) (*domain.ImportFile, error) {
	ctx, span := tracer.Start(ctx, "ImportService.Upload")
	defer span.End()
	span.SetAttributes(attribute.Int("file.size", len(data)))

	if !ledger.Valid() {
		return nil, &domain.ErrValidation{Field: "ledger_type", Message: "must be PF or PJ"}
	}
	if len(data) == 0 {
		return nil, &domain.ErrValidation{Field: "file", Message: "empty file"}
	}
	if len(data) > MaxUploadBytes {
		return nil, &domain.ErrValidation{Field: "file", Message: "file too large"}
	}
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "statement"
	}

	f := &domain.ImportFile{
		ID:           newID(),
		UserID:       userID,
		OriginalName: base,
		ContentType:  contentType,
		Size:         int64(len(data)),
		Ledger:       ledger,
		CreatedAt:    time.Now().UTC(),
	}
	f.StoragePath = path.Join(userID, f.ID, base)

	if err := s.files.Put(ctx, f.StoragePath, contentType, data); err != nil {
		s.logger.Error("store statement failed", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("store statement: %w", err)
	}
	if err := s.store.CreateFile(ctx, f); err != nil {
		s.logger.Error("create import file failed", zap.String("file_id", f.ID), zap.Error(err))
		return nil, fmt.Errorf("create import file: %w", err)
	}

	s.logger.Info("statement uploaded",
		zap.String("user_id", userID),
		zap.String("file_id", f.ID),
		zap.Int64("size", f.Size),
	)
	return f, nil
}

// ============================================================
// Parse — POST /v1/imports/parse
// ============================================================

// Parse turns an uploaded file into a batch of reviewable rows.
func (s *ImportService) Parse(ctx context.Context, userID, fileID string, source domain.SourceType) (*domain.ImportBatch, *domain.ParseSummary, error) {
	ctx, span := tracer.Start(ctx, "ImportService.Parse")
	defer span.End()
	span.SetAttributes(attribute.String("file.id", fileID), attribute.String("source.type", string(source)))

	if err := s.bulkhead.Acquire(ctx); err != nil {
		return nil, nil, &domain.ErrTimeout{Operation: "import parse queue"}
	}
	defer s.bulkhead.Release()
	span.SetAttributes(attribute.Int("import.parses_in_flight", s.bulkhead.InFlight()))

	file, err := s.store.GetFile(ctx, userID, fileID)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.files.Get(ctx, file.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("download statement: %w", err)
	}

	raws, err := statement.Parse(data, source)
	if err != nil {
		s.metrics.IncrParseFailure(source)
		s.logger.Warn("statement parse failed", zap.String("file_id", fileID), zap.Error(err))
		return nil, nil, err
	}

	rows, dropped := statement.Normalize(raws, time.Now().Year())
	if len(rows) == 0 {
		s.metrics.IncrParseFailure(source)
		return nil, nil, statement.NoValidRows(raws, source)
	}

	rules, existing, err := s.loadContext(ctx, userID, file.Ledger, rows)
	if err != nil {
		return nil, nil, err
	}

	cands := statement.Categorize(rows, rules)
	duplicates := statement.FlagDuplicates(cands, existing)

	now := time.Now().UTC()
	batch := &domain.ImportBatch{
		ID:         newID(),
		UserID:     userID,
		FileID:     file.ID,
		Ledger:     file.Ledger,
		SourceType: source,
		Status:     domain.BatchProcessing,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.CreateBatch(ctx, batch); err != nil {
		return nil, nil, fmt.Errorf("create batch: %w", err)
	}

	importRows := make([]domain.ImportRow, len(cands))
	summary := &domain.ParseSummary{RowCount: len(cands), DuplicateCount: duplicates, DroppedLines: dropped}
	for i, c := range cands {
		importRows[i] = domain.ImportRow{
			ID:                  newID(),
			BatchID:             batch.ID,
			UserID:              userID,
			Line:                c.Line,
			Date:                c.Date,
			RawDescription:      c.RawDescription,
			Description:         c.Description,
			Amount:              c.Amount,
			Direction:           c.Direction,
			SuggestedCategoryID: c.SuggestedCategoryID,
			Confidence:          c.Confidence,
			Status:              c.Status(),
			DuplicateOfID:       c.DuplicateOfID,
		}
		if c.SuggestedCategoryID != "" {
			summary.Categorized++
		}
		if c.Direction == domain.DirectionIn {
			summary.TotalIncoming += c.Amount
		} else {
			summary.TotalOutgoing += c.Amount
		}
	}

	if err := s.store.CreateRows(ctx, importRows); err != nil {
		s.logger.Error("insert import rows failed", zap.String("batch_id", batch.ID), zap.Error(err))
		batch.Status = domain.BatchFailed
		batch.UpdatedAt = time.Now().UTC()
		if uerr := s.store.UpdateBatch(ctx, batch); uerr != nil {
			s.logger.Error("mark batch failed", zap.String("batch_id", batch.ID), zap.Error(uerr))
		}
		return nil, nil, fmt.Errorf("insert import rows: %w", err)
	}

	from, to, _ := statement.DateRange(rows)
	batch.Status = domain.BatchReadyToReview
	batch.RowCount = len(importRows)
	batch.TotalIncoming = summary.TotalIncoming
	batch.TotalOutgoing = summary.TotalOutgoing
	batch.DateFrom, batch.DateTo = &from, &to
	batch.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateBatch(ctx, batch); err != nil {
		return nil, nil, fmt.Errorf("update batch: %w", err)
	}

	s.metrics.AddImportRows(domain.RowNew, len(importRows)-duplicates)
	s.metrics.AddImportRows(domain.RowDuplicateSuspect, duplicates)
	s.logger.Info("statement parsed",
		zap.String("batch_id", batch.ID),
		zap.Int("rows", summary.RowCount),
		zap.Int("duplicates", duplicates),
		zap.Int("dropped", dropped),
	)
	return batch, summary, nil
}

// loadContext fetches the ledger's rules and the existing transactions
// around the statement's dates in parallel.
func (s *ImportService) loadContext(ctx context.Context, userID string, ledger domain.Ledger, rows []statement.NormalizedRow) ([]domain.CategorizationRule, []domain.Transaction, error) {
	from, to, _ := statement.DuplicateWindow(rows)

	var (
		rules    []domain.CategorizationRule
		existing []domain.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rules, err = s.rules.ForLedger(gctx, userID, ledger)
		return err
	})
	g.Go(func() error {
		var err error
		existing, err = s.txs.ListTransactions(gctx, domain.TransactionFilter{
			UserID: userID,
			View:   domain.ViewOf(ledger),
			From:   from,
			To:     to,
		})
		if err != nil {
			return fmt.Errorf("list existing transactions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return rules, existing, nil
}

// ============================================================
// Review — GET /v1/imports/{id}, PUT rows, apply-rule
// ============================================================

func (s *ImportService) GetBatch(ctx context.Context, userID, batchID string) (*domain.BatchDetail, error) {
	ctx, span := tracer.Start(ctx, "ImportService.GetBatch")
	defer span.End()

	batch, err := s.store.GetBatch(ctx, userID, batchID)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.ListRows(ctx, batch.ID)
	if err != nil {
		return nil, fmt.Errorf("list import rows: %w", err)
	}
	return &domain.BatchDetail{Batch: batch, Rows: rows}, nil
}

// reviewable loads a batch that is still open for review.
func (s *ImportService) reviewable(ctx context.Context, userID, batchID string) (*domain.ImportBatch, error) {
	batch, err := s.store.GetBatch(ctx, userID, batchID)
	if err != nil {
		return nil, err
	}
	if batch.Status != domain.BatchReadyToReview {
		return nil, &domain.ErrConflict{Message: fmt.Sprintf("batch %s is %s, not under review", batch.ID, batch.Status)}
	}
	return batch, nil
}

// UpdateRow applies a review decision to one row.
func (s *ImportService) UpdateRow(ctx context.Context, userID, batchID, rowID string, upd *domain.RowUpdate) (*domain.ImportRow, error) {
	ctx, span := tracer.Start(ctx, "ImportService.UpdateRow")
	defer span.End()

	if upd.CategoryID == nil && !upd.Skip && !upd.Accept {
		return nil, &domain.ErrValidation{Field: "body", Message: "nothing to update"}
	}

	batch, err := s.reviewable(ctx, userID, batchID)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.ListRows(ctx, batch.ID)
	if err != nil {
		return nil, fmt.Errorf("list import rows: %w", err)
	}

	var row *domain.ImportRow
	for i := range rows {
		if rows[i].ID == rowID {
			row = &rows[i]
			break
		}
	}
	if row == nil {
		return nil, &domain.ErrNotFound{Resource: "import row", ID: rowID}
	}

	switch {
	case upd.Skip:
		row.Status = domain.RowSkipped
	default:
		if upd.CategoryID != nil {
			row.FinalCategoryID = *upd.CategoryID
			if row.Status == domain.RowNew {
				row.Status = domain.RowReady
			}
		}
		if upd.Accept && (row.Status == domain.RowDuplicateSuspect || row.Status == domain.RowSkipped) {
			row.Status = domain.RowReady
		}
	}

	if err := s.store.UpdateRow(ctx, row); err != nil {
		s.logger.Error("update import row failed", zap.String("row_id", rowID), zap.Error(err))
		return nil, fmt.Errorf("update import row: %w", err)
	}
	return row, nil
}

// ApplyRule creates a rule from the review screen and re-suggests the
// batch's matching rows that have no final category yet.
func (s *ImportService) ApplyRule(ctx context.Context, userID, batchID string, in *domain.RuleInput) (*domain.CategorizationRule, int, error) {
	ctx, span := tracer.Start(ctx, "ImportService.ApplyRule")
	defer span.End()

	batch, err := s.reviewable(ctx, userID, batchID)
	if err != nil {
		return nil, 0, err
	}
	if in.Ledger == "" {
		in.Ledger = batch.Ledger
	}

	rule, err := s.rules.Create(ctx, userID, in)
	if err != nil {
		return nil, 0, err
	}
	if rule.Ledger != batch.Ledger || !rule.Active {
		return rule, 0, nil
	}

	rows, err := s.store.ListRows(ctx, batch.ID)
	if err != nil {
		return nil, 0, fmt.Errorf("list import rows: %w", err)
	}
	updated := 0
	for i := range rows {
		r := &rows[i]
		if r.FinalCategoryID != "" || r.Status == domain.RowSkipped || r.Status == domain.RowImported {
			continue
		}
		if !statement.Matches(*rule, r.Description) {
			continue
		}
		r.SuggestedCategoryID = rule.CategoryID
		r.Confidence = domain.ConfidenceHigh
		if err := s.store.UpdateRow(ctx, r); err != nil {
			return nil, updated, fmt.Errorf("update import row: %w", err)
		}
		updated++
	}
	return rule, updated, nil
}

// ============================================================
// Commit / Rollback
// ============================================================

// Commit turns every NEW or READY row into a paid transaction tagged with
// the batch ID. It returns the number of transactions created.
func (s *ImportService) Commit(ctx context.Context, userID, batchID string) (int, error) {
	ctx, span := tracer.Start(ctx, "ImportService.Commit")
	defer span.End()
	span.SetAttributes(attribute.String("batch.id", batchID))

	batch, err := s.store.GetBatch(ctx, userID, batchID)
	if err != nil {
		return 0, err
	}
	if !batch.Status.CanTransition(domain.BatchImported) {
		return 0, &domain.ErrInvalidTransition{BatchID: batch.ID, From: batch.Status, To: domain.BatchImported}
	}

	rows, err := s.store.ListRows(ctx, batch.ID)
	if err != nil {
		return 0, fmt.Errorf("list import rows: %w", err)
	}

	now := time.Now().UTC()
	var (
		txs      []domain.Transaction
		imported []*domain.ImportRow
	)
	for i := range rows {
		r := &rows[i]
		if !r.Status.Importable() {
			continue
		}
		tx := domain.Transaction{
			ID:            newID(),
			UserID:        userID,
			Description:   r.Description,
			Amount:        r.Amount,
			Type:          r.Direction.TransactionType(),
			Status:        domain.TxPaid,
			Date:          r.Date,
			CategoryID:    r.CategoryID(),
			Ledger:        batch.Ledger,
			ImportBatchID: batch.ID,
			CreatedAt:     now,
		}
		txs = append(txs, tx)
		r.ImportedTransactionID = tx.ID
		imported = append(imported, r)
	}

	if err := s.txs.CreateTransactions(ctx, txs); err != nil {
		s.logger.Error("commit transactions failed", zap.String("batch_id", batch.ID), zap.Error(err))
		return 0, fmt.Errorf("create transactions: %w", err)
	}

	// From here on a failure must leave the batch committable again:
	// the created transactions are deleted and marked rows restored.
	var marked []*domain.ImportRow
	prev := make(map[string]domain.RowStatus, len(imported))
	for _, r := range imported {
		prev[r.ID] = r.Status
		r.Status = domain.RowImported
		if err := s.store.UpdateRow(ctx, r); err != nil {
			s.undoCommit(ctx, userID, batch.ID, marked, prev)
			return 0, fmt.Errorf("mark row imported: %w", err)
		}
		marked = append(marked, r)
	}

	batch.Status = domain.BatchImported
	batch.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateBatch(ctx, batch); err != nil {
		s.undoCommit(ctx, userID, batch.ID, marked, prev)
		return 0, fmt.Errorf("update batch: %w", err)
	}

	s.metrics.AddImportRows(domain.RowImported, len(txs))
	s.logger.Info("import committed", zap.String("batch_id", batch.ID), zap.Int("transactions", len(txs)))
	return len(txs), nil
}

// undoCommit compensates a commit that failed after its transactions were
// created. Failures here are logged; the original error is what the caller sees.
func (s *ImportService) undoCommit(ctx context.Context, userID, batchID string, marked []*domain.ImportRow, prev map[string]domain.RowStatus) {
	deleted, err := s.txs.DeleteTransactionsByBatch(ctx, userID, batchID)
	if err != nil {
		s.logger.Error("commit undo: delete transactions failed", zap.String("batch_id", batchID), zap.Error(err))
	}
	for _, r := range marked {
		r.Status = prev[r.ID]
		r.ImportedTransactionID = ""
		if err := s.store.UpdateRow(ctx, r); err != nil {
			s.logger.Error("commit undo: restore row failed",
				zap.String("batch_id", batchID), zap.String("row_id", r.ID), zap.Error(err))
		}
	}
	s.logger.Warn("commit undone", zap.String("batch_id", batchID), zap.Int("deleted", deleted))
}

// Rollback deletes every transaction the batch created. It is allowed once,
// from READY_TO_REVIEW or IMPORTED.
func (s *ImportService) Rollback(ctx context.Context, userID, batchID string) (int, error) {
	ctx, span := tracer.Start(ctx, "ImportService.Rollback")
	defer span.End()
	span.SetAttributes(attribute.String("batch.id", batchID))

	batch, err := s.store.GetBatch(ctx, userID, batchID)
	if err != nil {
		return 0, err
	}
	if !batch.Status.CanTransition(domain.BatchRolledBack) {
		return 0, &domain.ErrInvalidTransition{BatchID: batch.ID, From: batch.Status, To: domain.BatchRolledBack}
	}

	deleted, err := s.txs.DeleteTransactionsByBatch(ctx, userID, batch.ID)
	if err != nil {
		s.logger.Error("rollback delete failed", zap.String("batch_id", batch.ID), zap.Error(err))
		return 0, fmt.Errorf("delete batch transactions: %w", err)
	}

	batch.Status = domain.BatchRolledBack
	batch.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateBatch(ctx, batch); err != nil {
		return deleted, fmt.Errorf("update batch: %w", err)
	}

	s.logger.Info("import rolled back", zap.String("batch_id", batch.ID), zap.Int("deleted", deleted))
	return deleted, nil
}
