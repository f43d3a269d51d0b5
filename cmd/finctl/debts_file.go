package main

import (
	"fmt"
	"strings"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
)

// debtsFile is the TOML document read by `finctl simulate --debts`:
//
//	[[debt]]
//	name = "Cartão"
//	balance = "1500.00"
//	interest_rate = 12.5
//	minimum_payment = "75.00"
//	status = "LATE"
type debtsFile struct {
	Debts []debtEntry `toml:"debt"`
}

type debtEntry struct {
	Name           string          `toml:"name"`
	Balance        decimal.Decimal `toml:"balance"`
	InterestRate   float64         `toml:"interest_rate"`
	MinimumPayment decimal.Decimal `toml:"minimum_payment"`
	Status         string          `toml:"status"`
}

func loadDebts(path string) ([]domain.Debt, error) {
	var f debtsFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("reading debts file: %w", err)
	}
	if len(f.Debts) == 0 {
		return nil, fmt.Errorf("%s has no [[debt]] entries", path)
	}

	debts := make([]domain.Debt, 0, len(f.Debts))
	for i, e := range f.Debts {
		in := domain.DebtInput{
			Name:           e.Name,
			Balance:        domain.FromMajor(e.Balance),
			InterestRate:   e.InterestRate,
			MinimumPayment: domain.FromMajor(e.MinimumPayment),
			Status:         domain.DebtStatus(strings.ToUpper(e.Status)),
			Ledger:         domain.LedgerPF,
		}
		if err := in.Validate(); err != nil {
			return nil, fmt.Errorf("debt #%d: %w", i+1, err)
		}
		debts = append(debts, domain.Debt{
			ID:             fmt.Sprintf("debt-%d", i+1),
			Name:           in.Name,
			Balance:        in.Balance,
			InterestRate:   in.InterestRate,
			MinimumPayment: in.MinimumPayment,
			Status:         in.Status,
			Ledger:         in.Ledger,
		})
	}
	return debts, nil
}
