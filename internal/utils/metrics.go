package utils

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Tracks performance metrics across the system
type MetricsCollector struct {
	registry *prometheus.Registry

	requestCount prometheus.Counter
	errorCount   prometheus.Counter

	// Operation latencies, labelled by operation name
	operationTimes *prometheus.HistogramVec

	systemStartTime time.Time
}

func NewMetricsCollector() *MetricsCollector {
	mc := &MetricsCollector{
		registry: prometheus.NewRegistry(),
		requestCount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "yatube",
			Name:      "http_requests_total",
			Help:      "Number of HTTP requests served.",
		}),
		errorCount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "yatube",
			Name:      "http_errors_total",
			Help:      "Number of HTTP requests answered with a 5xx status.",
		}),
		operationTimes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "yatube",
			Name:      "operation_duration_seconds",
			Help:      "Latency of engine operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		systemStartTime: time.Now(),
	}

	uptime := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "yatube",
		Name:      "uptime_seconds",
		Help:      "Seconds since the engine started.",
	}, func() float64 { return time.Since(mc.systemStartTime).Seconds() })

	mc.registry.MustRegister(
		mc.requestCount,
		mc.errorCount,
		mc.operationTimes,
		uptime,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return mc
}

func (mc *MetricsCollector) IncrementRequests() {
	mc.requestCount.Inc()
}

func (mc *MetricsCollector) IncrementErrors() {
	mc.errorCount.Inc()
}

func (mc *MetricsCollector) AddOperationLatency(operationName string, duration time.Duration) {
	mc.operationTimes.WithLabelValues(operationName).Observe(duration.Seconds())
}

// Registry exposes the collector's registry, mainly for tests.
func (mc *MetricsCollector) Registry() *prometheus.Registry {
	return mc.registry
}

// Handler serves the collected metrics in the Prometheus exposition format.
func (mc *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(mc.registry, promhttp.HandlerOpts{})
}
