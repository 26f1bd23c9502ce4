package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	stageFrontend = "frontend"
	stageEngine   = "engine"
)

const (
	outcomeOK                  = "ok"
	outcomeEmpty               = "empty"
	outcomeTokenizeError       = "tokenize_error"
	outcomeParseError          = "parse_error"
	outcomeEvaluationError     = "evaluation_error"
	outcomeInvalidRepositories = "invalid_repositories"
)

// Metrics records query stage durations and outcomes. A nil *Metrics
// records nothing.
type Metrics struct {
	// StageDuration is the latency of each query stage
	StageDuration *prometheus.HistogramVec
	// Queries counts finished queries by outcome
	Queries *prometheus.CounterVec
}

// NewMetrics registers the query metrics on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pqview_stage_duration_seconds",
				Help:    "Query stage latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		Queries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pqview_queries_total",
				Help: "Total number of queries by outcome",
			},
			[]string{"outcome"},
		),
	}
}

func (m *Metrics) observeStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) countOutcome(outcome string) {
	if m == nil {
		return
	}
	m.Queries.WithLabelValues(outcome).Inc()
}
