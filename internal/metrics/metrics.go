// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DroppedRecords counts ledger records rejected at the decoding boundary, by reason.
	DroppedRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "suisplit",
		Name:      "ledger_dropped_records_total",
		Help:      "Ledger expense records rejected by validation.",
	}, []string{"reason"})

	// LedgerFetches counts expense fetches from a ledger backend, by backend and outcome.
	LedgerFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "suisplit",
		Name:      "ledger_fetches_total",
		Help:      "Expense fetches from a ledger backend.",
	}, []string{"backend", "outcome"})

	// BalanceComputeSeconds observes how long a balance computation takes, including the fetch.
	BalanceComputeSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "suisplit",
		Name:      "balance_compute_seconds",
		Help:      "Time to fetch expenses and compute participant balances.",
		Buckets:   prometheus.DefBuckets,
	})

	// RPCRequests counts Connect RPCs by procedure and code ("ok" on success).
	RPCRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "suisplit",
		Name:      "rpc_requests_total",
		Help:      "Connect RPC calls handled.",
	}, []string{"procedure", "code"})
)
