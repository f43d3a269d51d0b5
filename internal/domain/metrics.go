package domain

// MetricsSnapshot is the JSON view of the process counters served by
// GET /v1/metrics/summary.
type MetricsSnapshot struct {
	Requests        int64            `json:"requests"`
	ErrorRate       float64          `json:"error_rate"`
	AvgLatencyMs    float64          `json:"avg_latency_ms"`
	CacheHitRate    float64          `json:"cache_hit_rate"`
	ExternalErrors  map[string]int64 `json:"external_errors"`
	ImportRows      map[string]int64 `json:"import_rows"`
	Simulations     map[string]int64 `json:"simulations"`
	Reconciliations map[string]int64 `json:"reconciliations"`
	ParseFailures   int64            `json:"parse_failures"`
	Period          string           `json:"period"`
}
