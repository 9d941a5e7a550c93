// Package metrics exposes the pipeline's Prometheus instrumentation as
// package-level promauto vars. This pipeline is a batch tool: nothing
// here starts an HTTP listener by itself — internal/server optionally
// serves these on the --metrics-addr flag for the duration of one run.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransactionsTotal counts every transaction the account transactor
	// processed, labeled by kind (deposit/withdrawal/dispute/resolve/
	// chargeback) and outcome (transacted, or the rejected error kind).
	TransactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_transactions_total",
			Help: "Total number of transactions processed by the account transactor.",
		},
		[]string{"kind", "outcome"},
	)

	// WorkersActive is the number of per-client worker goroutines
	// currently alive (spawned lazily, one per client id).
	WorkersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_workers_active",
			Help: "Number of per-client worker goroutines currently running.",
		},
	)

	// RecordsParsed counts input CSV rows the stream processor
	// successfully converted into a Transaction.
	RecordsParsed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_records_parsed_total",
			Help: "Total number of input records successfully parsed.",
		},
	)

	// ParseErrorsTotal counts input records that failed field parsing or
	// conversion (each aborts the run). Header and CSV read failures
	// also abort the run but are not counted here.
	ParseErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_parse_errors_total",
			Help: "Total number of fatal input parse errors.",
		},
	)
)
