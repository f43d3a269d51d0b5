package domain

import "strings"

// ============================================================
// Ledger (PF personal / PJ business)
// ============================================================

// Ledger is the concrete partition a record belongs to. It is the only
// ledger type accepted on write paths.
type Ledger string

const (
	LedgerPF Ledger = "PF"
	LedgerPJ Ledger = "PJ"
)

// Valid reports whether l is PF or PJ.
func (l Ledger) Valid() bool {
	return l == LedgerPF || l == LedgerPJ
}

// ParseLedger parses a writable ledger. CONSOLIDATED is rejected: it is a
// view, never a record's ledger.
func ParseLedger(s string) (Ledger, error) {
	l := Ledger(strings.ToUpper(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", &ErrValidation{Field: "ledger", Message: "must be PF or PJ"}
	}
	return l, nil
}

// LedgerView selects which ledgers a read covers.
type LedgerView string

const (
	ViewPF           LedgerView = "PF"
	ViewPJ           LedgerView = "PJ"
	ViewConsolidated LedgerView = "CONSOLIDATED"
)

// ParseLedgerView parses a read filter; empty means CONSOLIDATED.
func ParseLedgerView(s string) (LedgerView, error) {
	v := LedgerView(strings.ToUpper(strings.TrimSpace(s)))
	switch v {
	case "":
		return ViewConsolidated, nil
	case ViewPF, ViewPJ, ViewConsolidated:
		return v, nil
	}
	return "", &ErrValidation{Field: "ledger", Message: "must be PF, PJ or CONSOLIDATED"}
}

// Ledger returns the single ledger selected by the view.
// ok is false for CONSOLIDATED.
func (v LedgerView) Ledger() (Ledger, bool) {
	switch v {
	case ViewPF:
		return LedgerPF, true
	case ViewPJ:
		return LedgerPJ, true
	}
	return "", false
}

// Includes reports whether records of ledger l are visible in the view.
func (v LedgerView) Includes(l Ledger) bool {
	if v == ViewConsolidated || v == "" {
		return true
	}
	return string(v) == string(l)
}

// ViewOf returns the view that selects exactly l.
func ViewOf(l Ledger) LedgerView {
	return LedgerView(l)
}
