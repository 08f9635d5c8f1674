package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	queryTotal        prometheus.Counter
	queryHitTotal     prometheus.Counter
	queryNoContext    prometheus.Counter
	retrievedChunkNum prometheus.Histogram
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dartos",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
		[]string{"method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dartos",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
		[]string{"method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dartos",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queryTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dartos",
			Subsystem: "rag",
			Name:      "query_total",
			Help:      "Total RAG query requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queryHitTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dartos",
			Subsystem: "rag",
			Name:      "query_hit_total",
			Help:      "RAG queries with at least one retrieved chunk.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queryNoContext := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dartos",
			Subsystem: "rag",
			Name:      "query_no_context_total",
			Help:      "RAG queries answered without any retrieved chunk.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	retrievedChunkNum := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "dartos",
			Subsystem: "rag",
			Name:      "retrieved_chunks",
			Help:      "Number of chunks retrieved per query.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(requestTotal, requestDuration, requestInFlight, queryTotal, queryHitTotal, queryNoContext, retrievedChunkNum)

	return &HTTPServerMetrics{
		registry:          registry,
		requestTotal:      requestTotal,
		requestDuration:   requestDuration,
		requestInFlight:   requestInFlight,
		queryTotal:        queryTotal,
		queryHitTotal:     queryHitTotal,
		queryNoContext:    queryNoContext,
		retrievedChunkNum: retrievedChunkNum,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) ObserveRequest(method, path string, status int, duration time.Duration) {
	m.requestTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RequestStarted() {
	m.requestInFlight.Inc()
}

func (m *HTTPServerMetrics) RequestFinished() {
	m.requestInFlight.Dec()
}

func (m *HTTPServerMetrics) ObserveQuery(retrievedChunks int) {
	m.queryTotal.Inc()
	m.retrievedChunkNum.Observe(float64(retrievedChunks))
	if retrievedChunks > 0 {
		m.queryHitTotal.Inc()
		return
	}
	m.queryNoContext.Inc()
}
