// Package metrics holds the Prometheus collectors for mini-analyst
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	HTTPRequests    *prometheus.CounterVec   // labels: route, status
	HTTPDuration    *prometheus.HistogramVec // labels: route
	UpstreamCalls   *prometheus.CounterVec   // labels: provider, op, outcome
	UpstreamLatency *prometheus.HistogramVec // labels: provider, op
	Signals         *prometheus.CounterVec   // labels: signal
	InFlight        prometheus.Gauge
	Rejected        prometheus.Counter

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg, together with the
// Go runtime and process collectors.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analyst_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "analyst_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"route"}),
		UpstreamCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analyst_upstream_calls_total",
			Help: "Market data calls by provider, operation and outcome",
		}, []string{"provider", "op", "outcome"}),
		UpstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "analyst_upstream_duration_seconds",
			Help:    "Market data call latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider", "op"}),
		Signals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analyst_signals_total",
			Help: "Analyses completed by resulting signal",
		}, []string{"signal"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "analyst_inflight_analyses",
			Help: "Analyses currently holding a worker slot",
		}),
		Rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "analyst_rejected_requests_total",
			Help: "Requests that gave up waiting for a worker slot",
		}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.HTTPRequests,
		m.HTTPDuration,
		m.UpstreamCalls,
		m.UpstreamLatency,
		m.Signals,
		m.InFlight,
		m.Rejected,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished HTTP request
func (m *Metrics) ObserveRequest(route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveUpstream records one provider call
func (m *Metrics) ObserveUpstream(provider, op string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.UpstreamCalls.WithLabelValues(provider, op, outcome).Inc()
	m.UpstreamLatency.WithLabelValues(provider, op).Observe(elapsed.Seconds())
}

// ObserveSignal counts a completed analysis
func (m *Metrics) ObserveSignal(signal string) {
	if m == nil {
		return
	}
	m.Signals.WithLabelValues(signal).Inc()
}

// SlotAcquired and SlotReleased track worker occupancy
func (m *Metrics) SlotAcquired() {
	if m == nil {
		return
	}
	m.InFlight.Inc()
}

func (m *Metrics) SlotReleased() {
	if m == nil {
		return
	}
	m.InFlight.Dec()
}

// RequestRejected counts a request that timed out waiting for a slot
func (m *Metrics) RequestRejected() {
	if m == nil {
		return
	}
	m.Rejected.Inc()
}
