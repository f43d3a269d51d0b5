package domain

import "time"

// ============================================================
// Budgets, recurring bills and alerts
// ============================================================

// Budget is a monthly spending limit for a category.
type Budget struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	CategoryID        string    `json:"category_id"`
	Ledger            Ledger    `json:"mode"`
	MonthlyLimit      Cents     `json:"monthly_limit"`
	AlertThresholdPct float64   `json:"alert_threshold_pct"`
	Active            bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
}

// Recurrence is a recurring bill or an installment purchase.
type Recurrence struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Description string          `json:"description"`
	Amount      Cents           `json:"amount"` // per period, or the total when Installments > 0
	Type        TransactionType `json:"type"`
	CategoryID  string          `json:"category_id,omitempty"`
	Ledger      Ledger          `json:"mode"`
	DayOfMonth  int             `json:"day_of_month"`
	// Installments > 0 splits Amount into that many parts; 0 repeats Amount monthly.
	Installments int       `json:"installments"`
	StartDate    time.Time `json:"start_date"`
	CreatedAt    time.Time `json:"created_at"`
}

// AlertKind classifies a dashboard alert.
type AlertKind string

const (
	AlertBudgetWarning  AlertKind = "BUDGET_WARNING"
	AlertBudgetExceeded AlertKind = "BUDGET_EXCEEDED"
	AlertOverdue        AlertKind = "OVERDUE"
	AlertDueSoon        AlertKind = "DUE_SOON"
	AlertDebtLate       AlertKind = "DEBT_LATE"
)

// Alert is a derived notice; never persisted.
type Alert struct {
	Kind        AlertKind `json:"kind"`
	Severity    string    `json:"severity"` // info, warning, critical
	Message     string    `json:"message"`
	ReferenceID string    `json:"reference_id"`
	Amount      Cents     `json:"amount,omitempty"`
	Date        string    `json:"date,omitempty"`
}

// MonthSummary holds the derived dashboard totals for one month.
type MonthSummary struct {
	Month            string          `json:"month"` // YYYY-MM
	View             LedgerView      `json:"view"`
	Income           Cents           `json:"income"`
	Expenses         Cents           `json:"expenses"`
	Net              Cents           `json:"net"`
	PendingIncome    Cents           `json:"pending_income"`
	PendingExpenses  Cents           `json:"pending_expenses"`
	TransactionCount int             `json:"transaction_count"`
	Categories       []CategoryTotal `json:"categories"`
	TotalDebt        Cents           `json:"total_debt"`
}

// CategoryTotal is the expense total of a category.
type CategoryTotal struct {
	CategoryID string `json:"category_id"`
	Total      Cents  `json:"total"`
	Count      int    `json:"count"`
}

// ParsedTransaction is a bank line already parsed by an external
// file-drop importer, reconciled directly against open transactions.
type ParsedTransaction struct {
	Description string          `json:"description"`
	Amount      Cents           `json:"amount"`
	Type        TransactionType `json:"type"`
	Date        string          `json:"date"`
	CategoryID  string          `json:"category_id"`
}

// ReconcileResult reports what the file-drop importer did.
type ReconcileResult struct {
	Inserted   []string `json:"inserted"`
	Reconciled []string `json:"reconciled"`
}

// DefaultAlertThreshold is the budget usage percent that raises a warning.
const DefaultAlertThreshold = 80

// BudgetInput is the body for creating or replacing a budget.
type BudgetInput struct {
	CategoryID        string  `json:"category_id"`
	Ledger            Ledger  `json:"mode"`
	MonthlyLimit      Cents   `json:"monthly_limit"`
	AlertThresholdPct float64 `json:"alert_threshold_pct"`
	Active            *bool   `json:"is_active,omitempty"`
}

// Validate checks the input and fills defaults.
func (in *BudgetInput) Validate() error {
	if in.CategoryID == "" {
		return &ErrValidation{Field: "category_id", Message: "required"}
	}
	if !in.Ledger.Valid() {
		return &ErrValidation{Field: "mode", Message: "must be PF or PJ"}
	}
	if in.MonthlyLimit <= 0 {
		return &ErrValidation{Field: "monthly_limit", Message: "must be positive"}
	}
	if in.AlertThresholdPct == 0 {
		in.AlertThresholdPct = DefaultAlertThreshold
	}
	if in.AlertThresholdPct < 0 || in.AlertThresholdPct > 100 {
		return &ErrValidation{Field: "alert_threshold_pct", Message: "must be between 0 and 100"}
	}
	return nil
}

// RecurrenceInput is the body for POST /v1/recurring.
type RecurrenceInput struct {
	Description  string          `json:"description"`
	Amount       Cents           `json:"amount"`
	Type         TransactionType `json:"type"`
	CategoryID   string          `json:"category_id"`
	Ledger       Ledger          `json:"mode"`
	DayOfMonth   int             `json:"day_of_month"`
	Installments int             `json:"installments"`
	StartDate    string          `json:"start_date"` // YYYY-MM-DD
}

// Validate checks the input and returns the parsed start date.
func (in *RecurrenceInput) Validate() (time.Time, error) {
	if in.Description == "" {
		return time.Time{}, &ErrValidation{Field: "description", Message: "required"}
	}
	if in.Amount <= 0 {
		return time.Time{}, &ErrValidation{Field: "amount", Message: "must be positive"}
	}
	if !in.Type.Valid() {
		return time.Time{}, &ErrValidation{Field: "type", Message: "must be INCOME or EXPENSE"}
	}
	if !in.Ledger.Valid() {
		return time.Time{}, &ErrValidation{Field: "mode", Message: "must be PF or PJ"}
	}
	if in.DayOfMonth < 1 || in.DayOfMonth > 31 {
		return time.Time{}, &ErrValidation{Field: "day_of_month", Message: "must be between 1 and 31"}
	}
	if in.Installments < 0 {
		return time.Time{}, &ErrValidation{Field: "installments", Message: "must not be negative"}
	}
	start, err := time.Parse(DateLayout, in.StartDate)
	if err != nil {
		return time.Time{}, &ErrValidation{Field: "start_date", Message: "must be YYYY-MM-DD"}
	}
	return start, nil
}
