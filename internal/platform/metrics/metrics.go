package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the process metrics. A nil *Collector is valid and records
// nothing.
type Collector struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration prometheus.Histogram
	rateLimited  prometheus.Counter

	bridgeCalls    *prometheus.CounterVec
	bridgeDuration *prometheus.HistogramVec

	storeRollbacks prometheus.Counter
	storeResyncs   *prometheus.CounterVec
	decodeIssues   *prometheus.CounterVec
}

func New() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kpiteam_http_requests_total",
			Help: "HTTP requests by status class.",
		}, []string{"class"}),
		httpDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kpiteam_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kpiteam_http_rate_limited_total",
			Help: "Requests rejected by the rate limiter.",
		}),
		bridgeCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kpiteam_bridge_calls_total",
			Help: "Remote actions by transport, action and outcome.",
		}, []string{"transport", "action", "outcome"}),
		bridgeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kpiteam_bridge_call_duration_seconds",
			Help:    "Remote action latency.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"transport", "action"}),
		storeRollbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kpiteam_store_rollbacks_total",
			Help: "Optimistic patches rolled back in place after a failed remote call.",
		}),
		storeResyncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kpiteam_store_resyncs_total",
			Help: "Full dataset reloads by reason.",
		}, []string{"reason"}),
		decodeIssues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kpiteam_decode_issues_total",
			Help: "Ingestion issues by collection and whether the record was rejected.",
		}, []string{"collection", "rejected"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.httpRequests, c.httpDuration, c.rateLimited,
		c.bridgeCalls, c.bridgeDuration,
		c.storeRollbacks, c.storeResyncs, c.decodeIssues,
	)
	return c
}

// Record observes one HTTP response.
func (c *Collector) Record(status int, duration time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(strconv.Itoa(status/100) + "xx").Inc()
	c.httpDuration.Observe(duration.Seconds())
	if status == http.StatusTooManyRequests {
		c.rateLimited.Inc()
	}
}

// BridgeCall observes one remote action. outcome is "ok" or an error kind.
func (c *Collector) BridgeCall(transport, action, outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	c.bridgeCalls.WithLabelValues(transport, action, outcome).Inc()
	c.bridgeDuration.WithLabelValues(transport, action).Observe(duration.Seconds())
}

func (c *Collector) Rollback() {
	if c == nil {
		return
	}
	c.storeRollbacks.Inc()
}

func (c *Collector) Resync(reason string) {
	if c == nil {
		return
	}
	c.storeResyncs.WithLabelValues(reason).Inc()
}

func (c *Collector) DecodeIssue(collection string, rejected bool) {
	if c == nil {
		return
	}
	c.decodeIssues.WithLabelValues(collection, strconv.FormatBool(rejected)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
