// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TurnsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_turns_processed_total",
			Help: "Total number of conversation turns processed",
		},
		[]string{"stage"},
	)

	PromptsReissued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_prompts_reissued_total",
			Help: "Total number of prompts re-issued after rejected input",
		},
		[]string{"prompt_kind"},
	)

	OffersPriced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_offers_priced_total",
			Help: "Total number of offers priced",
		},
		[]string{"offer_type", "tier"},
	)

	VerificationsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_verifications_completed_total",
			Help: "Total number of document verifications resolved",
		},
		[]string{"doc_id", "status"},
	)

	ResponderFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "intake_responder_fallbacks_total",
			Help: "Total number of Q&A turns answered by the fixed fallback",
		},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "intake_sessions_active",
			Help: "Number of live intake sessions",
		},
	)
)
