package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the bot's collectors.
	Registry = prometheus.NewRegistry()

	interactions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kudos_bot",
			Subsystem: "router",
			Name:      "interactions_total",
			Help:      "Inbound interactions by kind, name and outcome.",
		},
		[]string{"kind", "name", "outcome"},
	)

	ackLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "kudos_bot",
			Subsystem: "router",
			Name:      "ack_duration_seconds",
			Help:      "Time from dispatch to acknowledgment.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
	)

	ledgerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kudos_bot",
			Subsystem: "ledger",
			Name:      "requests_total",
			Help:      "Ledger calls by operation and status code (0 on transport failure).",
		},
		[]string{"op", "status"},
	)

	ledgerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kudos_bot",
			Subsystem: "ledger",
			Name:      "request_duration_seconds",
			Help:      "Duration of ledger calls.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"op"},
	)

	syncedMembers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kudos_bot",
			Subsystem: "sync",
			Name:      "members_total",
			Help:      "Channel members processed by membership sync.",
		},
		[]string{"outcome"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		interactions,
		ackLatency,
		ledgerRequests,
		ledgerDuration,
		syncedMembers,
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func RecordInteraction(kind, name, outcome string) {
	interactions.WithLabelValues(kind, name, outcome).Inc()
}

func RecordAck(d time.Duration) {
	ackLatency.Observe(d.Seconds())
}

func RecordLedgerCall(op string, status int, d time.Duration) {
	ledgerRequests.WithLabelValues(op, strconv.Itoa(status)).Inc()
	ledgerDuration.WithLabelValues(op).Observe(d.Seconds())
}

func RecordSyncedMember(outcome string) {
	syncedMembers.WithLabelValues(outcome).Inc()
}
