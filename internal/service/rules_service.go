package service

import (
	"context"
	"fmt"
	"time"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/infra/observability"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/port"

	"go.uber.org/zap"
)

// RuleService manages categorization rules and keeps a per-ledger cache of
// each user's rules for the import pipeline.
type RuleService struct {
	store   port.RuleStore
	cache   port.Cache[[]domain.CategorizationRule]
	metrics *observability.Metrics
	logger  *zap.Logger
}

func NewRuleService(store port.RuleStore, cache port.Cache[[]domain.CategorizationRule], metrics *observability.Metrics, logger *zap.Logger) *RuleService {
	return &RuleService{store: store, cache: cache, metrics: metrics, logger: logger}
}

func ruleCacheKey(userID string, ledger domain.Ledger) string {
	return userID + ":" + string(ledger)
}

func (s *RuleService) List(ctx context.Context, userID string, view domain.LedgerView) ([]domain.CategorizationRule, error) {
	ctx, span := tracer.Start(ctx, "RuleService.List")
	defer span.End()

	return s.store.ListRules(ctx, userID, view)
}

// ForLedger returns every rule of the ledger, served from cache when possible.
func (s *RuleService) ForLedger(ctx context.Context, userID string, ledger domain.Ledger) ([]domain.CategorizationRule, error) {
	ctx, span := tracer.Start(ctx, "RuleService.ForLedger")
	defer span.End()

	key := ruleCacheKey(userID, ledger)
	if rules, ok := s.cache.Get(key); ok {
		s.metrics.IncrCacheHit("rules")
		return rules, nil
	}
	s.metrics.IncrCacheMiss("rules")

	rules, err := s.store.ListRules(ctx, userID, domain.ViewOf(ledger))
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	s.cache.Set(key, rules)
	return rules, nil
}

func (s *RuleService) Create(ctx context.Context, userID string, in *domain.RuleInput) (*domain.CategorizationRule, error) {
	ctx, span := tracer.Start(ctx, "RuleService.Create")
	defer span.End()

	if err := in.Validate(); err != nil {
		return nil, err
	}

	r := &domain.CategorizationRule{
		ID:         newID(),
		UserID:     userID,
		Ledger:     in.Ledger,
		MatchType:  in.MatchType,
		Pattern:    in.Pattern,
		CategoryID: in.CategoryID,
		Priority:   in.Priority,
		Active:     in.Active == nil || *in.Active,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.CreateRule(ctx, r); err != nil {
		s.logger.Error("create rule failed", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("create rule: %w", err)
	}
	s.cache.Delete(ruleCacheKey(userID, r.Ledger))
	return r, nil
}

func (s *RuleService) Update(ctx context.Context, userID, ruleID string, in *domain.RuleInput) (*domain.CategorizationRule, error) {
	ctx, span := tracer.Start(ctx, "RuleService.Update")
	defer span.End()

	if err := in.Validate(); err != nil {
		return nil, err
	}

	r, err := s.store.GetRule(ctx, userID, ruleID)
	if err != nil {
		return nil, err
	}
	previous := r.Ledger

	r.Ledger = in.Ledger
	r.MatchType = in.MatchType
	r.Pattern = in.Pattern
	r.CategoryID = in.CategoryID
	r.Priority = in.Priority
	if in.Active != nil {
		r.Active = *in.Active
	}

	if err := s.store.UpdateRule(ctx, r); err != nil {
		s.logger.Error("update rule failed", zap.String("rule_id", ruleID), zap.Error(err))
		return nil, fmt.Errorf("update rule: %w", err)
	}
	s.cache.Delete(ruleCacheKey(userID, previous))
	s.cache.Delete(ruleCacheKey(userID, r.Ledger))
	return r, nil
}

func (s *RuleService) Delete(ctx context.Context, userID, ruleID string) error {
	ctx, span := tracer.Start(ctx, "RuleService.Delete")
	defer span.End()

	r, err := s.store.GetRule(ctx, userID, ruleID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteRule(ctx, userID, ruleID); err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	s.cache.Delete(ruleCacheKey(userID, r.Ledger))
	return nil
}
