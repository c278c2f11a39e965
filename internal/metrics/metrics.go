// Package metrics exposes Prometheus collectors for the API and its
// background jobs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP handler latency by route and status.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vinvest_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// UpstreamCalls counts market-data calls by operation and outcome.
	UpstreamCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vinvest_market_data_calls_total",
			Help: "Market data provider calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// AdviceRequests counts advice requests by outcome (generated, cached, failed).
	AdviceRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vinvest_advice_requests_total",
			Help: "Advice requests by outcome",
		},
		[]string{"outcome"},
	)

	// SnapshotsRecorded counts portfolio snapshots by outcome.
	SnapshotsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vinvest_snapshots_total",
			Help: "Portfolio snapshots recorded or failed",
		},
		[]string{"outcome"},
	)

	// AuditEntries counts audit trail writes by outcome.
	AuditEntries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vinvest_audit_entries_total",
			Help: "Audit trail writes by outcome",
		},
		[]string{"outcome"},
	)
)

// Outcome labels shared across collectors.
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeGenerated = "generated"
	OutcomeCached    = "cached"
	OutcomeFailed    = "failed"
)
