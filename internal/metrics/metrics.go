package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Tampering report metrics
	TamperingReportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guardian_tampering_reports_total",
		Help: "The total number of tampering reports received, by severity",
	}, []string{"severity"})

	// Sync metrics
	SyncRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guardian_sync_requests_total",
		Help: "The total number of value-sync requests, by outcome",
	}, []string{"outcome"})
	SyncRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guardian_sync_rejections_total",
		Help: "The total number of value-sync requests rejected by the verifier",
	})

	// Escalation metrics
	BansIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guardian_bans_issued_total",
		Help: "The total number of account suspensions issued",
	})

	// Store metrics
	StoreErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guardian_store_errors_total",
		Help: "The total number of player-record store failures surfaced to clients",
	})
)
