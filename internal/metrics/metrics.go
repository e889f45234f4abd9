package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActionsTotal counts reward actions by action name and outcome
	ActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "odyssey_actions_total",
			Help: "Total number of reward actions",
		},
		[]string{"action", "outcome"},
	)

	// TransactionsSent counts transactions submitted to the RPC endpoint
	TransactionsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "odyssey_transactions_sent_total",
			Help: "Total number of transactions submitted",
		},
		[]string{"status"},
	)

	// TxRetriesTotal counts transaction submission retries
	TxRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "odyssey_tx_retries_total",
			Help: "Total number of transaction submission retries",
		},
	)

	// ErrorsTotal counts errors by component and classification
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "odyssey_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "kind"},
	)

	// RingsWon counts ring rewards received by source
	RingsWon = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "odyssey_rings_won_total",
			Help: "Total ring rewards received",
		},
		[]string{"source"},
	)

	// WalletBalance tracks the last observed wallet balance in lamports
	WalletBalance = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "odyssey_wallet_balance_lamports",
			Help: "Last observed wallet balance in lamports",
		},
		[]string{"wallet"},
	)

	// RunDuration tracks full per-wallet run duration
	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "odyssey_run_duration_seconds",
			Help:    "Per-wallet workflow duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)
