package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	verificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_verifications_total",
			Help: "Payment verification attempts by result",
		},
		[]string{"result"},
	)

	webhooksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhooks_total",
			Help: "Payment webhook deliveries by result",
		},
		[]string{"result"},
	)

	statsRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_stats_runs_total",
			Help: "Daily payment stats runs by result and trigger",
		},
		[]string{"result", "trigger"},
	)
)
