package metrics

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

type ServerMetrics struct {
	Requests       *prometheus.CounterVec
	LatencyMS      *prometheus.HistogramVec
	Checkouts      *prometheus.CounterVec
	OrderTotalCent prometheus.Histogram

	gatherer prometheus.Gatherer
}

// グローバルのDefaultRegistererは使わない（テストで何度でも作れるように）
func NewServerMetrics(reg *prometheus.Registry) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"route", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"route"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkouts_total",
		Help:      "Checkout attempts by outcome.",
	}, []string{"outcome"})
	orderTotal := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "order_total_cents",
		Help:      "Total of placed orders in minor currency units.",
		Buckets:   prometheus.ExponentialBuckets(100, 4, 8),
	})

	reg.MustRegister(requests, latency, checkouts, orderTotal)
	return &ServerMetrics{
		Requests:       requests,
		LatencyMS:      latency,
		Checkouts:      checkouts,
		OrderTotalCent: orderTotal,
		gatherer:       reg,
	}
}

// usecase.CheckoutObserver
func (m *ServerMetrics) ObserveCheckout(outcome usecase.CheckoutOutcome, totalCents int64) {
	m.Checkouts.WithLabelValues(string(outcome)).Inc()
	if outcome == usecase.CheckoutOutcomePlaced {
		m.OrderTotalCent.Observe(float64(totalCents))
	}
}

func (m *ServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
