package usecases

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mintworks_submissions_total",
		Help: "External ledger submissions by terminal state",
	}, []string{"state"})

	feeBumpsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mintworks_fee_bumps_total",
		Help: "Underpriced submissions retried with bumped fees",
	})

	purchasesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mintworks_purchases_total",
		Help: "Purchase pipeline outcomes",
	}, []string{"outcome"})

	compensationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mintworks_compensations_total",
		Help: "Compensating credits issued after failed settlements",
	})
)
