// Package metrics holds the Prometheus collectors shared across the server.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	CatalogRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blindtest_catalog_requests_total",
			Help: "Catalog lookups by operation and outcome (hit, ok, error)",
		},
		[]string{"op", "status"},
	)
	CatalogDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "blindtest_catalog_request_duration_seconds",
			Help:    "Time spent fetching from the upstream catalog",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)
	GamesStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "blindtest_games_started_total",
			Help: "Games started",
		},
	)
	Guesses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blindtest_guesses_total",
			Help: "Evaluated guesses by result",
		},
		[]string{"result"},
	)
	SongsCommitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blindtest_songs_committed_total",
			Help: "Song cycles committed by outcome (correct, missed)",
		},
		[]string{"outcome"},
	)
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "blindtest_active_sessions",
			Help: "Sessions currently held in memory",
		},
	)
)

// Register adds every collector to reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		CatalogRequests,
		CatalogDuration,
		GamesStarted,
		Guesses,
		SongsCommitted,
		ActiveSessions,
	)
}
