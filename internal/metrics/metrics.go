package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var HTTPRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "blog_http_requests_total",
		Help: "Total number of HTTP requests received",
	},
	[]string{"endpoint", "status", "method"},
)

var HTTPRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "blog_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"endpoint", "method"},
)

var HTTPRateLimitRejectionsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "blog_http_rate_limit_rejections_total",
		Help: "Total number of HTTP requests rejected due to rate limiting",
	},
)

// MessagesCreatedTotal counts stored messages by origin: direct, broadcast or welcome
var MessagesCreatedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "blog_messages_created_total",
		Help: "Total number of messages stored",
	},
	[]string{"origin"},
)

// BroadcastEntriesTotal counts dispatcher attempts per recipient entry by result: sent or failed
var BroadcastEntriesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "blog_broadcast_entries_total",
		Help: "Total number of broadcast recipient deliveries attempted",
	},
	[]string{"result"},
)

// BroadcastRunsTotal counts dispatcher runs by outcome: completed, failed or skipped
var BroadcastRunsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "blog_broadcast_runs_total",
		Help: "Total number of broadcast dispatcher runs",
	},
	[]string{"outcome"},
)

var BroadcastRunsInFlight = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "blog_broadcast_runs_in_flight",
		Help: "Number of broadcast dispatcher runs currently executing",
	},
)

var BroadcastBatchDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "blog_broadcast_batch_duration_seconds",
		Help:    "Time taken to deliver and persist one dispatcher batch",
		Buckets: prometheus.DefBuckets,
	},
)

var TurnstileVerificationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "blog_turnstile_verifications_total",
		Help: "Total number of Turnstile verifications by result",
	},
	[]string{"result"},
)

var initOnce sync.Once

// Init registers every collector with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(HTTPRequestsTotal)
		prometheus.MustRegister(HTTPRequestDuration)
		prometheus.MustRegister(HTTPRateLimitRejectionsTotal)
		prometheus.MustRegister(MessagesCreatedTotal)
		prometheus.MustRegister(BroadcastEntriesTotal)
		prometheus.MustRegister(BroadcastRunsTotal)
		prometheus.MustRegister(BroadcastRunsInFlight)
		prometheus.MustRegister(BroadcastBatchDuration)
		prometheus.MustRegister(TurnstileVerificationsTotal)
	})
}
