// internal/session/metrics.go

package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sessions_total",
			Help: "Total number of sessions by final status",
		},
		[]string{"status"},
	)

	sessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sessions_active",
			Help: "Number of currently active sessions",
		},
	)

	sessionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "session_duration_seconds",
			Help:    "Distribution of session durations",
			Buckets: prometheus.ExponentialBuckets(15, 2, 10),
		},
	)

	topicsSuggested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_topics_suggested_total",
			Help: "Total topics suggested, by trigger",
		},
		[]string{"trigger"},
	)

	revealsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_reveals_total",
			Help: "Total number of completed blind reveals",
		},
	)
)

func recordSessionStart() {
	sessionsActive.Inc()
}

func recordSessionFinish(status Status, durationSeconds int) {
	sessionsActive.Dec()
	sessionsTotal.WithLabelValues(string(status)).Inc()
	sessionDuration.Observe(float64(durationSeconds))
}

func recordTopic(trigger string) {
	topicsSuggested.WithLabelValues(trigger).Inc()
}

func recordReveal() {
	revealsTotal.Inc()
}
