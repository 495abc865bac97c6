package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opRefresh  = "refresh"
	opLoadMore = "load_more"
)

var (
	fetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "likescenter_sync_fetch_total",
		Help: "Page fetches by operation and outcome.",
	}, []string{"op", "outcome"})

	fetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "likescenter_sync_fetch_duration_seconds",
		Help:    "Time spent fetching and persisting one page.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	actionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "likescenter_sync_actions_total",
		Help: "User actions by action and final state.",
	}, []string{"action", "outcome"})

	skippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "likescenter_sync_skipped_total",
		Help: "Refresh or load-more calls dropped because another was in flight or there was nothing to load.",
	}, []string{"op"})
)
