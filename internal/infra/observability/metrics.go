package observability

import (
	"time"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the BFA.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	externalErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
	importRows      *prometheus.CounterVec
	parseFailures   *prometheus.CounterVec
	simulations     *prometheus.CounterVec
	reconciliations *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bfa_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_requests_total",
				Help: "Total requests processed.",
			},
			[]string{"status"},
		),
		importRows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_import_rows_total",
				Help: "Statement rows persisted by initial review status.",
			},
			[]string{"status"},
		),
		parseFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_statement_parse_failures_total",
				Help: "Statements that yielded no usable rows.",
			},
			[]string{"source"},
		),
		simulations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_simulations_total",
				Help: "Debt payoff simulations run by strategy.",
			},
			[]string{"strategy"},
		),
		reconciliations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_reconciliations_total",
				Help: "File-drop transactions by outcome.",
			},
			[]string{"outcome"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrRequest increments the request counter with a status label.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// AddImportRows counts persisted rows for a status.
func (m *Metrics) AddImportRows(status domain.RowStatus, n int) {
	m.importRows.WithLabelValues(string(status)).Add(float64(n))
}

// IncrParseFailure counts a statement that failed to parse.
func (m *Metrics) IncrParseFailure(source domain.SourceType) {
	m.parseFailures.WithLabelValues(string(source)).Inc()
}

// IncrSimulation counts a simulation run.
func (m *Metrics) IncrSimulation(strategy string) {
	m.simulations.WithLabelValues(strategy).Inc()
}

// AddReconciliations counts file-drop outcomes ("inserted" or "reconciled").
func (m *Metrics) AddReconciliations(outcome string, n int) {
	m.reconciliations.WithLabelValues(outcome).Add(float64(n))
}

// Snapshot reads the registry back through client_model for
// GET /v1/metrics/summary.
func (m *Metrics) Snapshot() *domain.MetricsSnapshot {
	snap := &domain.MetricsSnapshot{
		ExternalErrors:  map[string]int64{},
		ImportRows:      map[string]int64{},
		Simulations:     map[string]int64{},
		Reconciliations: map[string]int64{},
		Period:          "since_start",
	}

	families, err := m.Registry.Gather()
	if err != nil {
		return snap
	}

	var hits, misses, success, failed, latencySum float64
	var latencyCount uint64
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			switch mf.GetName() {
			case "bfa_request_duration_seconds":
				h := metric.GetHistogram()
				latencySum += h.GetSampleSum()
				latencyCount += h.GetSampleCount()
			case "bfa_requests_total":
				if label(metric, "status") == "error" {
					failed += counterValue(metric)
				} else {
					success += counterValue(metric)
				}
			case "bfa_cache_hits_total":
				hits += counterValue(metric)
			case "bfa_cache_misses_total":
				misses += counterValue(metric)
			case "bfa_external_errors_total":
				snap.ExternalErrors[label(metric, "service")] = int64(counterValue(metric))
			case "bfa_import_rows_total":
				snap.ImportRows[label(metric, "status")] = int64(counterValue(metric))
			case "bfa_simulations_total":
				snap.Simulations[label(metric, "strategy")] = int64(counterValue(metric))
			case "bfa_reconciliations_total":
				snap.Reconciliations[label(metric, "outcome")] = int64(counterValue(metric))
			case "bfa_statement_parse_failures_total":
				snap.ParseFailures += int64(counterValue(metric))
			}
		}
	}

	total := success + failed
	snap.Requests = int64(total)
	if total > 0 {
		snap.ErrorRate = failed / total
	}
	if latencyCount > 0 {
		snap.AvgLatencyMs = latencySum / float64(latencyCount) * 1000
	}
	if hits+misses > 0 {
		snap.CacheHitRate = hits / (hits + misses)
	}
	return snap
}

func counterValue(m *dto.Metric) float64 {
	return m.GetCounter().GetValue()
}

func label(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}
