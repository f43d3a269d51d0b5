package domain

import "time"

// ============================================================
// Debts
// ============================================================

// DebtStatus is the repayment situation of a debt.
type DebtStatus string

const (
	DebtNormal       DebtStatus = "NORMAL"
	DebtLate         DebtStatus = "LATE"
	DebtRenegotiated DebtStatus = "RENEGOTIATED"
)

// Valid reports whether s is a known status.
func (s DebtStatus) Valid() bool {
	switch s {
	case DebtNormal, DebtLate, DebtRenegotiated:
		return true
	}
	return false
}

// Debt is a tracked liability. Simulations work on copies; the stored
// record is only changed by the user.
type Debt struct {
	ID           string  `json:"id"`
	UserID       string  `json:"user_id"`
	Name         string  `json:"name"`
	Balance      Cents   `json:"balance"`
	InterestRate float64 `json:"interest_rate"` // percent per month
	// MinimumPayment of zero means "not informed" (1% of balance is used).
	MinimumPayment Cents      `json:"minimum_payment,omitempty"`
	DueDay         int        `json:"due_day,omitempty"`
	Status         DebtStatus `json:"status"`
	Ledger         Ledger     `json:"mode"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// DebtInput is the body for creating or replacing a debt.
type DebtInput struct {
	Name           string     `json:"name"`
	Balance        Cents      `json:"balance"`
	InterestRate   float64    `json:"interest_rate"`
	MinimumPayment Cents      `json:"minimum_payment"`
	DueDay         int        `json:"due_day"`
	Status         DebtStatus `json:"status"`
	Ledger         Ledger     `json:"mode"`
}

// Validate checks the input and fills defaults.
func (in *DebtInput) Validate() error {
	if in.Name == "" {
		return &ErrValidation{Field: "name", Message: "required"}
	}
	if in.Balance < 0 {
		return &ErrValidation{Field: "balance", Message: "must not be negative"}
	}
	if in.InterestRate < 0 {
		return &ErrValidation{Field: "interest_rate", Message: "must not be negative"}
	}
	if in.MinimumPayment < 0 {
		return &ErrValidation{Field: "minimum_payment", Message: "must not be negative"}
	}
	if in.DueDay < 0 || in.DueDay > 31 {
		return &ErrValidation{Field: "due_day", Message: "must be a day of month"}
	}
	if in.Status == "" {
		in.Status = DebtNormal
	}
	if !in.Status.Valid() {
		return &ErrValidation{Field: "status", Message: "must be NORMAL, LATE or RENEGOTIATED"}
	}
	if !in.Ledger.Valid() {
		return &ErrValidation{Field: "mode", Message: "must be PF or PJ"}
	}
	return nil
}
