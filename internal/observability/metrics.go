// Package observability wires tracing and domain metrics. This file defines
// the Prometheus collectors for the escrow core. HTTP-level metrics live in
// the middleware package; the counters here track fund movements and batch
// outcomes regardless of which transport triggered them.
package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	// EscrowEntries counts appended ledger entries by type (LOCK/REFUND/RELEASE).
	EscrowEntries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "escrow_entries_total",
			Help: "Total number of escrow ledger entries appended, by entry type.",
		},
		[]string{"entry_type"},
	)

	// BatchItems counts per-commitment outcomes of admin batch runs.
	BatchItems = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "escrow_batch_items_total",
			Help: "Commitments handled by batch settlements, by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	// CampaignTransitions counts applied lifecycle transitions by target state.
	CampaignTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_transitions_total",
			Help: "Applied campaign state transitions, by target state.",
		},
		[]string{"to_state"},
	)
)

func init() {
	prometheus.MustRegister(EscrowEntries, BatchItems, CampaignTransitions)
}
