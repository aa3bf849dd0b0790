// Package metrics registers the Prometheus collectors for the notifier and
// exposes the scrape handler.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// 5ms to 30s; a handler run is a handful of outbound HTTP calls.
	durationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

	// EventsReceived counts "record created" deliveries accepted by the
	// ingestion endpoint.
	EventsReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wellness_events_received_total",
			Help: "Total number of survey record events accepted for dispatch.",
		},
	)

	// HandlerDuration measures each handler run, by handler and outcome
	// ("ok", "error", "panic").
	HandlerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wellness_handler_duration_seconds",
			Help:    "Histogram of handler run duration in seconds, by handler and outcome.",
			Buckets: durationBuckets,
		},
		[]string{"handler", "outcome"},
	)

	// EmailsSent counts result email sends by recipient role and status
	// ("sent" or "failed").
	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wellness_emails_sent_total",
			Help: "Total number of result email send attempts, by recipient role and status.",
		},
		[]string{"role", "status"},
	)

	// MailingListSync counts mailing-list decisions by outcome ("subscribed",
	// "skipped", "failed").
	MailingListSync = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wellness_mailinglist_sync_total",
			Help: "Total number of mailing-list sync decisions, by outcome.",
		},
		[]string{"outcome"},
	)
)

// Handler returns the HTTP handler for the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHandler records the duration of one handler run.
func ObserveHandler(handler, outcome string, start time.Time) {
	HandlerDuration.WithLabelValues(handler, outcome).Observe(time.Since(start).Seconds())
}
