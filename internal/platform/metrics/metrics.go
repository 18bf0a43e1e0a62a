package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the playback daemon.
type Metrics struct {
	registry              *prometheus.Registry
	requestsTotal         prometheus.Counter
	errorsTotal           prometheus.Counter
	probesTotal           *prometheus.CounterVec
	sessionsStartedTotal  prometheus.Counter
	engineErrorsTotal     *prometheus.CounterVec
	engineRecoveriesTotal *prometheus.CounterVec
	activeSessions        prometheus.Gauge
}

// New creates and registers Prometheus metrics on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "streamly_requests_total",
		Help: "Total number of HTTP requests received",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "streamly_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})
	probesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "streamly_probes_total",
		Help: "Probe calls to the backend by result",
	}, []string{"result"})
	sessionsStartedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "streamly_sessions_started_total",
		Help: "Total number of playback sessions started",
	})
	engineErrorsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "streamly_engine_errors_total",
		Help: "Errors reported by streaming engines",
	}, []string{"kind", "fatal"})
	engineRecoveriesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "streamly_engine_recoveries_total",
		Help: "Recovery commands issued to streaming engines",
	}, []string{"action"})
	activeSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "streamly_active_sessions",
		Help: "Number of sessions that are probing or streaming",
	})

	registry.MustRegister(
		requestsTotal,
		errorsTotal,
		probesTotal,
		sessionsStartedTotal,
		engineErrorsTotal,
		engineRecoveriesTotal,
		activeSessions,
	)

	return &Metrics{
		registry:              registry,
		requestsTotal:         requestsTotal,
		errorsTotal:           errorsTotal,
		probesTotal:           probesTotal,
		sessionsStartedTotal:  sessionsStartedTotal,
		engineErrorsTotal:     engineErrorsTotal,
		engineRecoveriesTotal: engineRecoveriesTotal,
		activeSessions:        activeSessions,
	}
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// IncProbes counts a probe call; result is "success" or "failure".
func (m *Metrics) IncProbes(result string) {
	m.probesTotal.WithLabelValues(result).Inc()
}

// IncSessionsStarted increments the sessions started counter.
func (m *Metrics) IncSessionsStarted() {
	m.sessionsStartedTotal.Inc()
}

// IncEngineErrors counts an engine error of the given kind.
func (m *Metrics) IncEngineErrors(kind string, fatal bool) {
	m.engineErrorsTotal.WithLabelValues(kind, strconv.FormatBool(fatal)).Inc()
}

// IncRecoveries counts a recovery command sent to an engine.
func (m *Metrics) IncRecoveries(action string) {
	m.engineRecoveriesTotal.WithLabelValues(action).Inc()
}

// SetActiveSessions sets the active sessions gauge.
func (m *Metrics) SetActiveSessions(n int) {
	m.activeSessions.Set(float64(n))
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
