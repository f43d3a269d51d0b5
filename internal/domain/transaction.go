package domain

import "time"

// ============================================================
// Transactions
// ============================================================

// TransactionType is the direction of a committed transaction.
type TransactionType string

const (
	TxIncome  TransactionType = "INCOME"
	TxExpense TransactionType = "EXPENSE"
)

// Valid reports whether t is INCOME or EXPENSE.
func (t TransactionType) Valid() bool {
	return t == TxIncome || t == TxExpense
}

// TransactionStatus is the settlement state of a transaction.
type TransactionStatus string

const (
	TxPending   TransactionStatus = "PENDING"
	TxPaid      TransactionStatus = "PAID"
	TxLate      TransactionStatus = "LATE"
	TxScheduled TransactionStatus = "SCHEDULED"
)

// Valid reports whether s is a known status.
func (s TransactionStatus) Valid() bool {
	switch s {
	case TxPending, TxPaid, TxLate, TxScheduled:
		return true
	}
	return false
}

// Open reports whether the transaction still awaits settlement.
func (s TransactionStatus) Open() bool {
	return s == TxPending || s == TxScheduled || s == TxLate
}

// Transaction is the committed financial record and the source of truth
// for every balance shown by the dashboard.
type Transaction struct {
	ID            string            `json:"id"`
	UserID        string            `json:"user_id"`
	Description   string            `json:"description"`
	Amount        Cents             `json:"amount"`
	Type          TransactionType   `json:"type"`
	Status        TransactionStatus `json:"status"`
	Date          time.Time         `json:"date"`
	CategoryID    string            `json:"category_id,omitempty"`
	Ledger        Ledger            `json:"mode"`
	ProjectID     string            `json:"project_id,omitempty"`
	ClientID      string            `json:"client_id,omitempty"`
	RecurrenceID  string            `json:"recurrence_id,omitempty"`
	ImportBatchID string            `json:"import_batch_id,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// TransactionInput is the body for manual creation.
type TransactionInput struct {
	Description string            `json:"description"`
	Amount      Cents             `json:"amount"`
	Type        TransactionType   `json:"type"`
	Status      TransactionStatus `json:"status"`
	Date        string            `json:"date"` // YYYY-MM-DD
	CategoryID  string            `json:"category_id"`
	Ledger      Ledger            `json:"mode"`
	ProjectID   string            `json:"project_id"`
	ClientID    string            `json:"client_id"`
}

// TransactionFilter narrows a transaction listing. Zero values mean "any".
type TransactionFilter struct {
	UserID string
	View   LedgerView
	From   time.Time // inclusive
	To     time.Time // inclusive
	Status TransactionStatus
	Type   TransactionType
}

// Signed returns the amount with income positive and expense negative.
func (t Transaction) Signed() Cents {
	if t.Type == TxExpense {
		return -t.Amount
	}
	return t.Amount
}

// DateLayout is the storage format for calendar dates.
const DateLayout = "2006-01-02"

// Validate checks the input, fills defaults and returns the parsed date.
func (in *TransactionInput) Validate() (time.Time, error) {
	if in.Description == "" {
		return time.Time{}, &ErrValidation{Field: "description", Message: "required"}
	}
	if in.Amount <= 0 {
		return time.Time{}, &ErrValidation{Field: "amount", Message: "must be positive"}
	}
	if !in.Type.Valid() {
		return time.Time{}, &ErrValidation{Field: "type", Message: "must be INCOME or EXPENSE"}
	}
	if in.Status == "" {
		in.Status = TxPending
	}
	if !in.Status.Valid() {
		return time.Time{}, &ErrValidation{Field: "status", Message: "unknown status"}
	}
	if !in.Ledger.Valid() {
		return time.Time{}, &ErrValidation{Field: "mode", Message: "must be PF or PJ"}
	}
	date, err := time.Parse(DateLayout, in.Date)
	if err != nil {
		return time.Time{}, &ErrValidation{Field: "date", Message: "must be YYYY-MM-DD"}
	}
	return date, nil
}
