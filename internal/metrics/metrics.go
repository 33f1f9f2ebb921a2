// BGGSync - BoardGameGeek Collection Sync and Play Tracking
// Copyright 2026 Martin F. (mfranz87)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfranz87/bggsync

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Refresh Cycle Metrics
	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bgg_refresh_duration_seconds",
			Help:    "Duration of full BGG refresh cycles in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600}, // Collection fetches can take minutes
		},
	)

	RefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bgg_refresh_total",
			Help: "Total number of refresh cycles by outcome",
		},
		[]string{"outcome"}, // "success", "degraded", "error"
	)

	RefreshLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bgg_refresh_last_success_timestamp",
			Help: "Unix timestamp of the last successful refresh",
		},
	)

	CollectionStillProcessing = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bgg_collection_still_processing_total",
			Help: "Total number of refresh cycles aborted because BGG was still building the collection export",
		},
	)

	// BGG API Client Metrics
	BGGRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bgg_api_requests_total",
			Help: "Total number of BGG API requests",
		},
		[]string{"endpoint", "status"}, // endpoint: "plays", "collection", "thing", "login", "geekplay"
	)

	BGGRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bgg_api_request_duration_seconds",
			Help:    "BGG API request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"endpoint"},
	)

	PlaysRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bgg_plays_recorded_total",
			Help: "Total number of plays submitted to BGG by outcome",
		},
		[]string{"outcome"}, // "success", "failure"
	)

	// Snapshot Gauges
	SnapshotTotalPlays = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bgg_snapshot_total_plays",
			Help: "Total recorded plays in the current snapshot",
		},
	)

	SnapshotOwnedGames = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bgg_snapshot_owned_games",
			Help: "Owned collection entries (boardgames plus expansions) in the current snapshot",
		},
	)

	SnapshotCollectionSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bgg_snapshot_collection_entries",
			Help: "Collection entries in the current snapshot by status",
		},
		[]string{"status"}, // "owned", "wishlist", "want_to_play", "want_to_buy", "preordered", "previously_owned"
	)

	SnapshotTrackedGames = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bgg_snapshot_tracked_games",
			Help: "Number of explicitly tracked games",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordRefresh records the outcome of a refresh cycle.
func RecordRefresh(duration time.Duration, outcome string) {
	RefreshDuration.Observe(duration.Seconds())
	RefreshTotal.WithLabelValues(outcome).Inc()
	if outcome != "error" {
		RefreshLastSuccess.Set(float64(time.Now().Unix()))
	}
}

// RecordBGGRequest records a BGG API request by endpoint and HTTP status.
func RecordBGGRequest(endpoint string, statusCode int, duration time.Duration) {
	BGGRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()
	BGGRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordPlayLogged records the outcome of a play submission.
func RecordPlayLogged(success bool) {
	if success {
		PlaysRecorded.WithLabelValues("success").Inc()
		return
	}
	PlaysRecorded.WithLabelValues("failure").Inc()
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// UpdateSnapshotGauges publishes snapshot-level gauges after a refresh.
func UpdateSnapshotGauges(totalPlays, trackedGames int, countsByStatus map[string]int) {
	SnapshotTotalPlays.Set(float64(totalPlays))
	SnapshotTrackedGames.Set(float64(trackedGames))
	for status, count := range countsByStatus {
		SnapshotCollectionSize.WithLabelValues(status).Set(float64(count))
		if status == "owned" {
			SnapshotOwnedGames.Set(float64(count))
		}
	}
}
