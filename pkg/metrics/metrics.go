package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// InvitesMinted counts created beta invites by kind (email|wildcard).
	InvitesMinted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "betagate_invites_minted_total",
			Help: "Total number of beta invites created",
		},
		[]string{"kind"},
	)

	// Redemptions counts redemption attempts and their outcome (success|invalid_code|error).
	Redemptions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "betagate_redemptions_total",
			Help: "Total number of beta code redemption attempts",
		},
		[]string{"result"},
	)

	// GateDecisions counts signup gate outcomes (allow|deny).
	GateDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "betagate_gate_decisions_total",
			Help: "Total number of signup gate authorization decisions",
		},
		[]string{"result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "betagate_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
