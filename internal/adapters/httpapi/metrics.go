package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quentinrf/sensorice/internal/domain"
)

// Metrics collects service metrics on its own registry.
// This implements the ports.Observer interface
type Metrics struct {
	registry *prometheus.Registry

	fetchDuration *prometheus.HistogramVec
	fetchErrors   *prometheus.CounterVec
	pestRisk      *prometheus.GaugeVec
	alerts        prometheus.Counter
	wsClients     prometheus.Gauge
	httpRequests  *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sensorice",
			Name:      "upstream_fetch_duration_seconds",
			Help:      "Duration of upstream calls by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		fetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sensorice",
			Name:      "upstream_fetch_errors_total",
			Help:      "Failed upstream calls by operation.",
		}, []string{"op"}),
		pestRisk: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "sensorice",
			Name:      "pest_risk",
			Help:      "1 when the pest flag is raised for the field.",
		}, []string{"field_id", "pest"}),
		alerts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sensorice",
			Name:      "pest_alerts_total",
			Help:      "Pest alerts broadcast to live clients.",
		}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sensorice",
			Name:      "websocket_clients",
			Help:      "Connected live-feed clients.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sensorice",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"route", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.fetchDuration,
		m.fetchErrors,
		m.pestRisk,
		m.alerts,
		m.wsClients,
		m.httpRequests,
	)
	return m
}

// ObserveFetch records an upstream call
func (m *Metrics) ObserveFetch(op string, elapsed time.Duration, err error) {
	m.fetchDuration.WithLabelValues(op).Observe(elapsed.Seconds())
	if err != nil {
		m.fetchErrors.WithLabelValues(op).Inc()
	}
}

// ObservePestRisk records the latest risk of a field
func (m *Metrics) ObservePestRisk(fieldID int64, risk domain.PestRisk) {
	id := strconv.FormatInt(fieldID, 10)
	m.pestRisk.WithLabelValues(id, "rodent").Set(boolGauge(risk.Rodent))
	m.pestRisk.WithLabelValues(id, "planthopper").Set(boolGauge(risk.Planthopper))
}

func (m *Metrics) observeRequest(route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
