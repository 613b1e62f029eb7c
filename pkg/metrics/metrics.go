package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	EventsIngestedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mqtt_events_ingested_total",
			Help: "Total number of broker messages recorded in the event store (count)",
		},
	)

	EventsBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mqtt_events_bytes_total",
			Help: "Total raw payload bytes recorded in the event store (bytes)",
		},
	)

	EventsBinaryTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mqtt_events_binary_total",
			Help: "Total number of recorded payloads that were not valid text (count)",
		},
	)

	EventsRetainedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mqtt_events_retained_total",
			Help: "Total number of recorded messages delivered as retained (count)",
		},
	)

	StoreWriteFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "store_write_failures_total",
			Help: "Total number of messages dropped because the event store append failed (count)",
		},
	)

	StoreAppendDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "store_append_duration_ms",
			Help:    "Duration of event store appends in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_query_duration_ms",
			Help:    "Duration of event store queries in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		},
		[]string{"mode"},
	)

	BrokerConnectsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "broker_connects_total",
			Help: "Total number of successful broker connections, including reconnects (count)",
		},
	)

	BrokerDisconnectsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "broker_disconnects_total",
			Help: "Total number of unsolicited broker disconnections (count)",
		},
	)

	IngestState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ingest_controller_state",
			Help: "Ingest controller state (0=disconnected, 1=connecting, 2=subscribed, 3=shutting down, 4=terminated) (state code)",
		},
	)

	IngestQueueSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ingest_queue_size",
			Help: "Number of broker messages waiting in the inbound delivery channel (count)",
		},
	)

	FloodAlertsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "flood_alerts_total",
			Help: "Total number of per-topic message flood alerts raised (count)",
		},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of HTTP requests seen by the rate limiter, by outcome (count)",
		},
		[]string{"outcome"},
	)
)

func RegisterIngestMetrics() {
	prometheus.MustRegister(EventsIngestedTotal)
	prometheus.MustRegister(EventsBytesTotal)
	prometheus.MustRegister(EventsBinaryTotal)
	prometheus.MustRegister(EventsRetainedTotal)
	prometheus.MustRegister(StoreWriteFailuresTotal)
	prometheus.MustRegister(StoreAppendDuration)
	prometheus.MustRegister(BrokerConnectsTotal)
	prometheus.MustRegister(BrokerDisconnectsTotal)
	prometheus.MustRegister(IngestState)
	prometheus.MustRegister(IngestQueueSize)
	prometheus.MustRegister(FloodAlertsTotal)
}

func RegisterQueryMetrics() {
	prometheus.MustRegister(QueryDuration)
}

func RegisterHTTPMetrics() {
	prometheus.MustRegister(RateLimitRequestsTotal)
}

func ObserveStoreAppendDuration(duration time.Duration) {
	StoreAppendDuration.Observe(float64(duration.Milliseconds()))
}

func ObserveQueryDuration(mode string, duration time.Duration) {
	QueryDuration.WithLabelValues(mode).Observe(float64(duration.Milliseconds()))
}

func SetIngestState(state int) {
	IngestState.Set(float64(state))
}

func SetIngestQueueSize(size int) {
	IngestQueueSize.Set(float64(size))
}
