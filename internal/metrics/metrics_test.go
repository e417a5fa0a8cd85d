package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/usecase"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ usecase.CheckoutObserver = (*ServerMetrics)(nil)

func TestObserveCheckout(t *testing.T) {
	m := NewServerMetrics(prometheus.NewRegistry())

	m.ObserveCheckout(usecase.CheckoutOutcomePlaced, 5297)
	m.ObserveCheckout(usecase.CheckoutOutcomePlaced, 999)
	m.ObserveCheckout(usecase.CheckoutOutcomeEmptyCart, 0)
	m.ObserveCheckout(usecase.CheckoutOutcomeFailed, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Checkouts.WithLabelValues("placed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Checkouts.WithLabelValues("empty_cart")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Checkouts.WithLabelValues("failed")))
	// 確定した注文だけヒストグラムに入る
	assert.Equal(t, 1, testutil.CollectAndCount(m.OrderTotalCent))
}

func TestHandler_ExposesRegisteredMetrics(t *testing.T) {
	m := NewServerMetrics(prometheus.NewRegistry())
	m.Requests.WithLabelValues("/cart", "200").Inc()
	m.ObserveCheckout(usecase.CheckoutOutcomePlaced, 1999)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `storefront_http_requests_total{route="/cart",status="200"} 1`)
	assert.Contains(t, string(body), `storefront_checkouts_total{outcome="placed"} 1`)
	assert.Contains(t, string(body), "storefront_order_total_cents_count 1")
}

// 別々のRegistryなら二重登録にならない
func TestNewServerMetrics_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewServerMetrics(prometheus.NewRegistry())
		NewServerMetrics(prometheus.NewRegistry())
	})
}
