package domain

import "time"

// ============================================================
// Statement import (files, batches, rows)
// ============================================================

// SourceType is the declared format of an uploaded statement.
type SourceType string

const (
	SourceCSV SourceType = "CSV"
	SourcePDF SourceType = "PDF"
)

// ImportFile is an uploaded statement. Immutable after upload.
type ImportFile struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	StoragePath  string    `json:"storage_path"`
	OriginalName string    `json:"original_name"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	Ledger       Ledger    `json:"ledger_type"`
	CreatedAt    time.Time `json:"created_at"`
}

// BatchStatus is the lifecycle state of an import batch.
type BatchStatus string

const (
	BatchProcessing    BatchStatus = "PROCESSING"
	BatchReadyToReview BatchStatus = "READY_TO_REVIEW"
	BatchImported      BatchStatus = "IMPORTED"
	BatchRolledBack    BatchStatus = "ROLLED_BACK"
	BatchFailed        BatchStatus = "FAILED"
)

var batchTransitions = map[BatchStatus][]BatchStatus{
	BatchProcessing:    {BatchReadyToReview, BatchFailed},
	BatchReadyToReview: {BatchImported, BatchRolledBack},
	BatchImported:      {BatchRolledBack},
}

// CanTransition reports whether a batch may move from s to next.
// READY_TO_REVIEW is never re-entered once left.
func (s BatchStatus) CanTransition(next BatchStatus) bool {
	for _, allowed := range batchTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ImportBatch is one parse run over an ImportFile.
type ImportBatch struct {
	ID            string      `json:"id"`
	UserID        string      `json:"user_id"`
	FileID        string      `json:"file_id"`
	Ledger        Ledger      `json:"ledger_type"`
	SourceType    SourceType  `json:"source_type"`
	Status        BatchStatus `json:"status"`
	TotalIncoming Cents       `json:"total_incoming"`
	TotalOutgoing Cents       `json:"total_outgoing"`
	RowCount      int         `json:"row_count"`
	DateFrom      *time.Time  `json:"date_from,omitempty"`
	DateTo        *time.Time  `json:"date_to,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// Direction of money on a statement line.
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// TransactionType maps a statement direction to a transaction type.
func (d Direction) TransactionType() TransactionType {
	if d == DirectionOut {
		return TxExpense
	}
	return TxIncome
}

// Confidence of a category suggestion.
type Confidence string

const (
	ConfidenceLow    Confidence = "LOW"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceHigh   Confidence = "HIGH"
)

// RowStatus is the review state of a candidate row.
type RowStatus string

const (
	RowNew              RowStatus = "NEW"
	RowReady            RowStatus = "READY"
	RowImported         RowStatus = "IMPORTED"
	RowDuplicateSuspect RowStatus = "DUPLICATE_SUSPECT"
	RowSkipped          RowStatus = "SKIPPED"
)

// Importable reports whether commit turns the row into a transaction.
func (s RowStatus) Importable() bool {
	return s == RowNew || s == RowReady
}

// ImportRow is one candidate transaction extracted from a batch.
type ImportRow struct {
	ID                    string     `json:"id"`
	BatchID               string     `json:"batch_id"`
	UserID                string     `json:"user_id"`
	Line                  int        `json:"line"`
	Date                  time.Time  `json:"date"`
	RawDescription        string     `json:"raw_description"`
	Description           string     `json:"normalized_description"`
	Amount                Cents      `json:"amount"`
	Direction             Direction  `json:"direction"`
	SuggestedCategoryID   string     `json:"suggested_category_id,omitempty"`
	FinalCategoryID       string     `json:"final_category_id,omitempty"`
	Confidence            Confidence `json:"confidence"`
	Status                RowStatus  `json:"status"`
	DuplicateOfID         string     `json:"duplicate_of_id,omitempty"`
	ImportedTransactionID string     `json:"imported_transaction_id,omitempty"`
}

// CategoryID returns the final category, falling back to the suggestion.
func (r ImportRow) CategoryID() string {
	if r.FinalCategoryID != "" {
		return r.FinalCategoryID
	}
	return r.SuggestedCategoryID
}

// RowUpdate is the body of PUT /imports/{batchId}/rows/{rowId}.
type RowUpdate struct {
	CategoryID *string `json:"category_id,omitempty"`
	Skip       bool    `json:"skip,omitempty"`
	// Accept promotes a DUPLICATE_SUSPECT row to READY.
	Accept bool `json:"accept,omitempty"`
}

// ParseSummary is returned by the parse endpoint.
type ParseSummary struct {
	RowCount       int   `json:"row_count"`
	DuplicateCount int   `json:"duplicate_count"`
	Categorized    int   `json:"categorized_count"`
	TotalIncoming  Cents `json:"total_incoming"`
	TotalOutgoing  Cents `json:"total_outgoing"`
	DroppedLines   int   `json:"dropped_lines"`
}

// BatchDetail is a batch with its rows.
type BatchDetail struct {
	Batch *ImportBatch `json:"batch"`
	Rows  []ImportRow  `json:"rows"`
}
