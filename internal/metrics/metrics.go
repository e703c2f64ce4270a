package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Core operation counters. Registered on the default registry and exposed on
// /metrics.
var (
	JournalsPosted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "accounted",
		Name:      "journals_posted_total",
		Help:      "Number of journals sealed into the hash chain.",
	})

	JournalsReversed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "accounted",
		Name:      "journals_reversed_total",
		Help:      "Number of reversal journals posted.",
	})

	ChainVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "accounted",
		Name:      "chain_verifications_total",
		Help:      "Chain verification walks by outcome.",
	}, []string{"outcome"})

	PostingFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "accounted",
		Name:      "posting_failures_total",
		Help:      "Posting pipeline failures by error code.",
	}, []string{"code"})
)
