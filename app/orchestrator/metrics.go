package orchestrator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	campaignsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campaigns_started_total",
		Help: "Total number of campaigns started",
	})

	campaignsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campaigns_finished_total",
		Help: "Total number of campaigns by terminal stage",
	}, []string{"stage"})

	activeCampaigns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "campaigns_active",
		Help: "Number of campaigns currently running",
	})

	negotiationOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "negotiation_outcomes_total",
		Help: "Total number of finished negotiations by outcome",
	}, []string{"outcome"})

	activeNegotiations = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "negotiations_active",
		Help: "Number of negotiations currently in flight",
	})

	budgetCommitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "budget_committed_total",
		Help: "Total budget committed across all accepted negotiations",
	})

	negotiationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "negotiation_duration_seconds",
		Help:    "Wall-clock duration of individual negotiations",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})
)
