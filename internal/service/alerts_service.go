package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/port"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DueSoonDays is the look-ahead for DUE_SOON alerts.
const DueSoonDays = 7

const (
	severityInfo     = "info"
	severityWarning  = "warning"
	severityCritical = "critical"
)

var severityRank = map[string]int{severityCritical: 0, severityWarning: 1, severityInfo: 2}

// ============================================================
// Alerts — GET /v1/alerts
// ============================================================

type AlertService struct {
	budgets port.BudgetStore
	txs     port.TransactionStore
	debts   port.DebtStore
	logger  *zap.Logger
}

func NewAlertService(budgets port.BudgetStore, txs port.TransactionStore, debts port.DebtStore, logger *zap.Logger) *AlertService {
	return &AlertService{budgets: budgets, txs: txs, debts: debts, logger: logger}
}

// List derives the user's alerts as of now, most severe first.
func (s *AlertService) List(ctx context.Context, userID string, view domain.LedgerView, now time.Time) ([]domain.Alert, error) {
	ctx, span := tracer.Start(ctx, "AlertService.List")
	defer span.End()

	day := today(now)
	monthStart, monthEnd := monthRange(day)
	horizon := day.AddDate(0, 0, DueSoonDays)
	to := monthEnd
	if horizon.After(to) {
		to = horizon
	}

	var (
		budgets  []domain.Budget
		expenses []domain.Transaction
		open     []domain.Transaction
		debts    []domain.Debt
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		budgets, err = s.budgets.ListBudgets(gctx, userID, view)
		return err
	})
	g.Go(func() (err error) {
		expenses, err = s.txs.ListTransactions(gctx, domain.TransactionFilter{
			UserID: userID, View: view, From: monthStart, To: monthEnd, Type: domain.TxExpense,
		})
		return err
	})
	g.Go(func() (err error) {
		open, err = s.txs.ListTransactions(gctx, domain.TransactionFilter{
			UserID: userID, View: view, To: to, Type: domain.TxExpense,
		})
		return err
	})
	g.Go(func() (err error) {
		debts, err = s.debts.ListDebts(gctx, userID, view)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load alert data: %w", err)
	}

	alerts := budgetAlerts(budgets, expenses)
	for _, tx := range open {
		if !tx.Status.Open() {
			continue
		}
		switch {
		case tx.Date.Before(day):
			alerts = append(alerts, domain.Alert{
				Kind:        domain.AlertOverdue,
				Severity:    severityCritical,
				Message:     fmt.Sprintf("%s is overdue", tx.Description),
				ReferenceID: tx.ID,
				Amount:      tx.Amount,
				Date:        tx.Date.Format(domain.DateLayout),
			})
		case !tx.Date.After(horizon):
			alerts = append(alerts, domain.Alert{
				Kind:        domain.AlertDueSoon,
				Severity:    severityInfo,
				Message:     fmt.Sprintf("%s is due in %d day(s)", tx.Description, daysApart(tx.Date, day)),
				ReferenceID: tx.ID,
				Amount:      tx.Amount,
				Date:        tx.Date.Format(domain.DateLayout),
			})
		}
	}
	for _, d := range debts {
		if d.Status == domain.DebtLate {
			alerts = append(alerts, domain.Alert{
				Kind:        domain.AlertDebtLate,
				Severity:    severityWarning,
				Message:     fmt.Sprintf("%s is late", d.Name),
				ReferenceID: d.ID,
				Amount:      d.Balance,
			})
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return severityRank[alerts[i].Severity] < severityRank[alerts[j].Severity]
	})
	return alerts, nil
}

func budgetAlerts(budgets []domain.Budget, expenses []domain.Transaction) []domain.Alert {
	type key struct {
		category string
		ledger   domain.Ledger
	}
	spent := make(map[key]domain.Cents)
	for _, tx := range expenses {
		spent[key{tx.CategoryID, tx.Ledger}] += tx.Amount
	}

	var out []domain.Alert
	for _, b := range budgets {
		if !b.Active || b.MonthlyLimit <= 0 {
			continue
		}
		used := spent[key{b.CategoryID, b.Ledger}]
		pct := float64(used) * 100 / float64(b.MonthlyLimit)
		switch {
		case pct >= 100:
			out = append(out, domain.Alert{
				Kind:        domain.AlertBudgetExceeded,
				Severity:    severityCritical,
				Message:     fmt.Sprintf("budget for %s exceeded: %s of %s", b.CategoryID, used, b.MonthlyLimit),
				ReferenceID: b.ID,
				Amount:      used,
			})
		case pct >= b.AlertThresholdPct:
			out = append(out, domain.Alert{
				Kind:        domain.AlertBudgetWarning,
				Severity:    severityWarning,
				Message:     fmt.Sprintf("budget for %s at %.0f%%", b.CategoryID, pct),
				ReferenceID: b.ID,
				Amount:      used,
			})
		}
	}
	return out
}

// ============================================================
// Summary — GET /v1/summary
// ============================================================

type SummaryService struct {
	txs    port.TransactionStore
	debts  port.DebtStore
	logger *zap.Logger
}

func NewSummaryService(txs port.TransactionStore, debts port.DebtStore, logger *zap.Logger) *SummaryService {
	return &SummaryService{txs: txs, debts: debts, logger: logger}
}

// Month aggregates one calendar month. Income and expenses count PAID
// entries; open entries go to the pending totals.
func (s *SummaryService) Month(ctx context.Context, userID string, view domain.LedgerView, month time.Time) (*domain.MonthSummary, error) {
	ctx, span := tracer.Start(ctx, "SummaryService.Month")
	defer span.End()

	from, to := monthRange(month)
	var (
		txs   []domain.Transaction
		debts []domain.Debt
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		txs, err = s.txs.ListTransactions(gctx, domain.TransactionFilter{UserID: userID, View: view, From: from, To: to})
		return err
	})
	g.Go(func() (err error) {
		debts, err = s.debts.ListDebts(gctx, userID, view)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load summary data: %w", err)
	}

	sum := &domain.MonthSummary{
		Month:            from.Format("2006-01"),
		View:             view,
		TransactionCount: len(txs),
		Categories:       []domain.CategoryTotal{},
	}
	byCategory := map[string]*domain.CategoryTotal{}
	for _, tx := range txs {
		paid := tx.Status == domain.TxPaid
		switch {
		case tx.Type == domain.TxIncome && paid:
			sum.Income += tx.Amount
		case tx.Type == domain.TxIncome:
			sum.PendingIncome += tx.Amount
		case paid:
			sum.Expenses += tx.Amount
		default:
			sum.PendingExpenses += tx.Amount
		}
		if tx.Type != domain.TxExpense {
			continue
		}
		cat := tx.CategoryID
		if cat == "" {
			cat = "uncategorized"
		}
		ct, ok := byCategory[cat]
		if !ok {
			ct = &domain.CategoryTotal{CategoryID: cat}
			byCategory[cat] = ct
		}
		ct.Total += tx.Amount
		ct.Count++
	}
	sum.Net = sum.Income - sum.Expenses

	for _, ct := range byCategory {
		sum.Categories = append(sum.Categories, *ct)
	}
	sort.Slice(sum.Categories, func(i, j int) bool {
		a, b := sum.Categories[i], sum.Categories[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.CategoryID < b.CategoryID
	})

	for _, d := range debts {
		sum.TotalDebt += d.Balance
	}
	return sum, nil
}
