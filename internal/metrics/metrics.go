// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - Recommendation session lifecycle (starts, turns, terminal states)
// - Scoring strategy selection
// - Recommendation persistence failures (degraded responses)
// - API endpoint latency and throughput

var (
	// Session Metrics
	SessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_sessions_started_total",
			Help: "Total number of recommendation sessions started",
		},
	)

	SessionsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_sessions_finished_total",
			Help: "Total number of recommendation sessions reaching a terminal state",
		},
		[]string{"status"}, // "complete", "aborted", "expired"
	)

	SessionTurns = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_session_turns",
			Help:    "Number of questions answered before a session finished",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 8, 10},
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_active_sessions",
			Help: "Current number of in-flight recommendation sessions",
		},
	)

	// Scoring Metrics
	ScoresComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_scores_total",
			Help: "Total number of candidate scores computed, by reason tag",
		},
		[]string{"reason"}, // "heuristic_baseline", "learned_model", "cold_start"
	)

	ModelTrainings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_model_trainings_total",
			Help: "Total number of learned-model training runs completed",
		},
	)

	// Persistence Metrics
	RecommendationWriteErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_persist_errors_total",
			Help: "Total number of failed recommendation persistence writes (degraded responses)",
		},
	)

	FeedbackRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feedback_records_total",
			Help: "Total number of feedback records attached to recommendations",
		},
	)

	ListsPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lists_purged_total",
			Help: "Total number of soft-deleted lists physically purged",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)
)

// RecordAPIRequest records metrics for a completed API request.
func RecordAPIRequest(method, path, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, path, status).Inc()
	APIRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordSessionFinished records a terminal session state and its turn count.
func RecordSessionFinished(status string, turns int) {
	SessionsCompleted.WithLabelValues(status).Inc()
	SessionTurns.Observe(float64(turns))
}

// StatusLabel converts an HTTP status code to its metric label.
func StatusLabel(code int) string {
	return strconv.Itoa(code)
}
