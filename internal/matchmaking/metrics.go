// internal/matchmaking/metrics.go

package matchmaking

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queueJoinsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchmaking_queue_joins_total",
			Help: "Total number of queue joins",
		},
		[]string{"intent"},
	)

	queueSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "matchmaking_queue_size",
			Help: "Current number of entries in the matchmaking queue",
		},
	)

	matchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matchmaking_matches_total",
			Help: "Total number of committed matches",
		},
	)

	releasesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matchmaking_releases_total",
			Help: "Total number of pair releases",
		},
	)

	similarityScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matchmaking_similarity_scores",
			Help:    "Distribution of winning match similarity scores",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)
)

func recordJoin(intent IntentMode) {
	queueJoinsTotal.WithLabelValues(string(intent)).Inc()
}

func recordMatch(similarity float64) {
	matchesTotal.Inc()
	similarityScores.Observe(similarity)
}

func recordRelease() {
	releasesTotal.Inc()
}

func setQueueSize(n int) {
	queueSize.Set(float64(n))
}
