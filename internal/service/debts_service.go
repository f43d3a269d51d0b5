package service

import (
	"context"
	"fmt"
	"time"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/infra/observability"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/port"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/simulation"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// SimulationRequest is the body of POST /v1/debts/simulate.
type SimulationRequest struct {
	simulation.Params
	// DebtIDs restricts the run to these debts; empty means every debt in the view.
	DebtIDs   []string `json:"debt_ids,omitempty"`
	Scenarios bool     `json:"scenarios"`
}

// SimulationResponse bundles the result with the per-debt month-1 plan.
type SimulationResponse struct {
	simulation.Result
	Plan      []simulation.DebtPlan `json:"plan"`
	Scenarios []simulation.Scenario `json:"scenarios,omitempty"`
}

// DebtService manages debts and runs payoff simulations over them.
type DebtService struct {
	store   port.DebtStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

func NewDebtService(store port.DebtStore, metrics *observability.Metrics, logger *zap.Logger) *DebtService {
	return &DebtService{store: store, metrics: metrics, logger: logger}
}

func (s *DebtService) List(ctx context.Context, userID string, view domain.LedgerView) ([]domain.Debt, error) {
	ctx, span := tracer.Start(ctx, "DebtService.List")
	defer span.End()
	span.SetAttributes(attribute.String("ledger.view", string(view)))

	return s.store.ListDebts(ctx, userID, view)
}

func (s *DebtService) Create(ctx context.Context, userID string, in *domain.DebtInput) (*domain.Debt, error) {
	ctx, span := tracer.Start(ctx, "DebtService.Create")
	defer span.End()

	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	d := &domain.Debt{
		ID:             newID(),
		UserID:         userID,
		Name:           in.Name,
		Balance:        in.Balance,
		InterestRate:   in.InterestRate,
		MinimumPayment: in.MinimumPayment,
		DueDay:         in.DueDay,
		Status:         in.Status,
		Ledger:         in.Ledger,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.CreateDebt(ctx, d); err != nil {
		s.logger.Error("create debt failed", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("create debt: %w", err)
	}
	return d, nil
}

func (s *DebtService) Update(ctx context.Context, userID, debtID string, in *domain.DebtInput) (*domain.Debt, error) {
	ctx, span := tracer.Start(ctx, "DebtService.Update")
	defer span.End()

	if err := in.Validate(); err != nil {
		return nil, err
	}

	d, err := s.store.GetDebt(ctx, userID, debtID)
	if err != nil {
		return nil, err
	}
	d.Name = in.Name
	d.Balance = in.Balance
	d.InterestRate = in.InterestRate
	d.MinimumPayment = in.MinimumPayment
	d.DueDay = in.DueDay
	d.Status = in.Status
	d.Ledger = in.Ledger
	d.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateDebt(ctx, d); err != nil {
		s.logger.Error("update debt failed", zap.String("debt_id", debtID), zap.Error(err))
		return nil, fmt.Errorf("update debt: %w", err)
	}
	return d, nil
}

func (s *DebtService) Delete(ctx context.Context, userID, debtID string) error {
	ctx, span := tracer.Start(ctx, "DebtService.Delete")
	defer span.End()

	if err := s.store.DeleteDebt(ctx, userID, debtID); err != nil {
		return fmt.Errorf("delete debt: %w", err)
	}
	return nil
}

// Simulate loads the user's debts in view and runs the payoff simulation.
func (s *DebtService) Simulate(ctx context.Context, userID string, view domain.LedgerView, req *SimulationRequest) (*SimulationResponse, error) {
	ctx, span := tracer.Start(ctx, "DebtService.Simulate")
	defer span.End()

	if req.Strategy == "" {
		req.Strategy = simulation.Avalanche
	}
	if !req.Strategy.Valid() {
		return nil, &domain.ErrValidation{Field: "strategy", Message: "must be AVALANCHE or SNOWBALL"}
	}
	if req.MonthlyPayment < 0 || req.ExtraOneTime < 0 {
		return nil, &domain.ErrValidation{Field: "monthly_payment", Message: "must not be negative"}
	}
	span.SetAttributes(attribute.String("simulation.strategy", string(req.Strategy)))

	debts, err := s.store.ListDebts(ctx, userID, view)
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	debts = selectDebts(debts, req.DebtIDs)

	res := simulation.Simulate(debts, req.Params)
	s.metrics.IncrSimulation(string(req.Strategy))

	resp := &SimulationResponse{Result: res, Plan: simulation.PlanByDebt(debts, res)}
	if req.Scenarios {
		resp.Scenarios = simulation.Scenarios(debts, req.Params)
	}

	if res.Insufficient {
		s.logger.Info("simulation hit month cap",
			zap.String("user_id", userID),
			zap.Int("debts", len(debts)),
			zap.Stringer("remaining", res.Remaining),
		)
	}
	return resp, nil
}

func selectDebts(debts []domain.Debt, ids []string) []domain.Debt {
	if len(ids) == 0 {
		return debts
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := debts[:0:0]
	for _, d := range debts {
		if want[d.ID] {
			out = append(out, d)
		}
	}
	return out
}
