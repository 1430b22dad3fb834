// Package metrics provides Prometheus metrics for rentals and rent
// disbursement. All methods are safe to call on a nil *Metrics.
package metrics

import (
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "estateshare"

// Transfer and rental outcomes used as label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	gatherer prometheus.Gatherer

	transfersTotal    *prometheus.CounterVec
	transferDuration  prometheus.Histogram
	disbursedUnits    prometheus.Counter
	forfeitedUnits    prometheus.Counter
	rentalsTotal      *prometheus.CounterVec
	storeWritesTotal  *prometheus.CounterVec
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// NewMetrics creates and registers metrics on reg. A nil reg uses a fresh
// registry, which keeps tests independent of the global default.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)

	return &Metrics{
		gatherer: reg,
		transfersTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transfers_total",
				Help:      "Total number of rent transfers submitted to the ledger",
			},
			[]string{"outcome"},
		),
		transferDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "transfer_duration_seconds",
				Help:      "Time until the ledger acknowledged a transfer",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		disbursedUnits: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "disbursed_units_total",
				Help:      "Smallest currency units paid out to shareholders",
			},
		),
		forfeitedUnits: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "forfeited_units_total",
				Help:      "Truncation remainder kept by tenants and never transferred",
			},
		),
		rentalsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rentals_total",
				Help:      "Total number of rental attempts by outcome",
			},
			[]string{"outcome"},
		),
		storeWritesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_writes_total",
				Help:      "Rental record writes by backend and outcome",
			},
			[]string{"backend", "outcome"},
		),
		httpRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
	}
}

// bigToFloat converts a currency amount for a counter. Precision loss only
// affects the metric.
func bigToFloat(v *big.Int) float64 {
	if v == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}

// RecordTransfer records the outcome of a single ledger transfer.
func (m *Metrics) RecordTransfer(amount *big.Int, err error, duration time.Duration) {
	if m == nil {
		return
	}
	m.transferDuration.Observe(duration.Seconds())
	if err != nil {
		m.transfersTotal.WithLabelValues(OutcomeFailure).Inc()
		return
	}
	m.transfersTotal.WithLabelValues(OutcomeSuccess).Inc()
	m.disbursedUnits.Add(bigToFloat(amount))
}

// RecordRemainder records truncation dust that was not transferred.
func (m *Metrics) RecordRemainder(remainder *big.Int) {
	if m == nil || remainder == nil || remainder.Sign() <= 0 {
		return
	}
	m.forfeitedUnits.Add(bigToFloat(remainder))
}

// RecordRental records the terminal state of a rental attempt.
func (m *Metrics) RecordRental(outcome string) {
	if m == nil {
		return
	}
	m.rentalsTotal.WithLabelValues(outcome).Inc()
}

// RecordStoreWrite records a rental record write.
func (m *Metrics) RecordStoreWrite(backend string, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.storeWritesTotal.WithLabelValues(backend, outcome).Inc()
}

// RecordHTTPRequest records metrics for an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
