package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/infra/observability"
)

func TestMetrics_Snapshot(t *testing.T) {
	m := observability.NewMetrics()

	m.IncrRequest("success")
	m.IncrRequest("success")
	m.IncrRequest("success")
	m.IncrRequest("error")
	m.RecordRequestDuration("GET /v1/debts", 100*time.Millisecond)
	m.RecordRequestDuration("GET /v1/debts", 300*time.Millisecond)
	m.IncrCacheHit("rules")
	m.IncrCacheMiss("rules")
	m.AddImportRows(domain.RowNew, 5)
	m.AddImportRows(domain.RowDuplicateSuspect, 2)
	m.IncrSimulation("AVALANCHE")
	m.AddReconciliations("reconciled", 3)
	m.IncrExternalError("supabase")
	m.IncrParseFailure(domain.SourcePDF)

	s := m.Snapshot()

	if s.Requests != 4 {
		t.Errorf("expected 4 requests, got %d", s.Requests)
	}
	if s.ErrorRate != 0.25 {
		t.Errorf("expected error rate 0.25, got %f", s.ErrorRate)
	}
	if s.AvgLatencyMs < 199 || s.AvgLatencyMs > 201 {
		t.Errorf("expected ~200ms average latency, got %f", s.AvgLatencyMs)
	}
	if s.CacheHitRate != 0.5 {
		t.Errorf("expected hit rate 0.5, got %f", s.CacheHitRate)
	}
	if s.ImportRows["NEW"] != 5 || s.ImportRows["DUPLICATE_SUSPECT"] != 2 {
		t.Errorf("unexpected import rows %v", s.ImportRows)
	}
	if s.Simulations["AVALANCHE"] != 1 {
		t.Errorf("unexpected simulations %v", s.Simulations)
	}
	if s.Reconciliations["reconciled"] != 3 {
		t.Errorf("unexpected reconciliations %v", s.Reconciliations)
	}
	if s.ExternalErrors["supabase"] != 1 {
		t.Errorf("unexpected external errors %v", s.ExternalErrors)
	}
	if s.ParseFailures != 1 {
		t.Errorf("expected 1 parse failure, got %d", s.ParseFailures)
	}
}

func TestMetrics_EmptySnapshot(t *testing.T) {
	s := observability.NewMetrics().Snapshot()
	if s.Requests != 0 || s.ErrorRate != 0 || s.CacheHitRate != 0 {
		t.Errorf("expected zero snapshot, got %+v", s)
	}
}

func TestInitTracer_NoEndpoint(t *testing.T) {
	shutdown, err := observability.InitTracer("", "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("unexpected shutdown error: %v", err)
	}
}
