package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector the service exports.
var Registry = prometheus.NewRegistry()

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	aiGenerations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ai_generations_total",
		Help: "AI generations by kind and outcome.",
	}, []string{"kind", "outcome"})

	aiDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ai_generation_duration_seconds",
		Help:    "Time spent waiting on the AI provider.",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"kind"})

	cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_lookups_total",
		Help: "Unified cache lookups by result.",
	}, []string{"result"})

	queueMessages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "analysis_queue_messages_total",
		Help: "Analysis queue messages handled by the worker, by outcome.",
	}, []string{"outcome"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequests, httpDuration, aiGenerations, aiDuration, cacheLookups, queueMessages,
	)
}

// Middleware records request counts and latency keyed by route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}

// ObserveAIGeneration records one generation attempt. outcome is
// "completed", "failed" or "cached".
func ObserveAIGeneration(kind, outcome string, d time.Duration) {
	aiGenerations.WithLabelValues(kind, outcome).Inc()
	if outcome != "cached" {
		aiDuration.WithLabelValues(kind).Observe(d.Seconds())
	}
}

// ObserveCacheLookup records a hit or miss.
func ObserveCacheLookup(hit bool) {
	if hit {
		cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	cacheLookups.WithLabelValues("miss").Inc()
}

// IncQueueMessage records a worker outcome: received, completed, retry, dropped.
func IncQueueMessage(outcome string) {
	queueMessages.WithLabelValues(outcome).Inc()
}
