package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// eventsTotal counts dispatched events by action and result.
	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracegraph_events_total",
		Help: "Total trace events dispatched by action and result",
	}, []string{"action", "result"})

	// eventDuration tracks how long handlers take to apply an event.
	eventDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tracegraph_event_duration_seconds",
		Help:    "Event application duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs to ~2.6s
	}, []string{"action"})
)

const resultApplied = "applied"

// actionLabel keeps the label set bounded: unknown actions are not echoed.
func actionLabel(kind ErrorKind, action string) string {
	if kind == UnknownAction || action == "" {
		return "unknown"
	}
	return action
}
