package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hupe1980/learner"
)

var _ learner.MetricsCollector = (*PrometheusCollector)(nil)

// PrometheusCollector exports server events as Prometheus metrics.
type PrometheusCollector struct {
	requests       *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	connections    prometheus.Gauge
	protocolErrors prometheus.Counter
	queueDepth     *prometheus.GaugeVec
}

// NewPrometheusCollector registers the learner metrics with reg.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	f := promauto.With(reg)

	return &PrometheusCollector{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "learner",
			Name:      "requests_total",
			Help:      "Requests served, by item, operation and response code",
		}, []string{"item", "operation", "code"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "learner",
			Name:      "request_duration_seconds",
			Help:      "Time spent executing a request against the store",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 10),
		}, []string{"item", "operation"}),
		connections: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "learner",
			Name:      "open_connections",
			Help:      "Currently open client connections",
		}),
		protocolErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: "learner",
			Name:      "protocol_errors_total",
			Help:      "Connections dropped because of a malformed frame",
		}),
		queueDepth: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "learner",
			Name:      "queue_depth",
			Help:      "Connections waiting in a relay queue",
		}, []string{"queue"}),
	}
}

func (p *PrometheusCollector) RecordRequest(item, operation, code string, d time.Duration) {
	p.requests.WithLabelValues(item, operation, code).Inc()
	p.latency.WithLabelValues(item, operation).Observe(d.Seconds())
}

func (p *PrometheusCollector) RecordConnection(delta int) {
	p.connections.Add(float64(delta))
}

func (p *PrometheusCollector) RecordProtocolError() {
	p.protocolErrors.Inc()
}

func (p *PrometheusCollector) RecordQueueDepth(queue string, depth int) {
	p.queueDepth.WithLabelValues(queue).Set(float64(depth))
}
