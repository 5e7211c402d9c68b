package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// GatewayMetrics records cart and checkout activity.
type GatewayMetrics struct {
	cartMutations  *prometheus.CounterVec
	checkouts      *prometheus.CounterVec
	paymentResults *prometheus.CounterVec
}

// NewGatewayMetrics registers the gateway metrics on the provided registerer.
func NewGatewayMetrics(reg prometheus.Registerer) *GatewayMetrics {
	if reg == nil {
		return &GatewayMetrics{}
	}
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations by operation.",
	}, []string{"op"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_submissions_total",
		Help: "Checkout submissions by outcome.",
	}, []string{"outcome"})
	paymentResults := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_results_total",
		Help: "Payment results by backend-confirmed status.",
	}, []string{"status"})
	reg.MustRegister(cartMutations, checkouts, paymentResults)
	return &GatewayMetrics{
		cartMutations:  cartMutations,
		checkouts:      checkouts,
		paymentResults: paymentResults,
	}
}

// IncCartMutation counts one cart mutation for the named operation.
func (g *GatewayMetrics) IncCartMutation(op string) {
	if g == nil || g.cartMutations == nil {
		return
	}
	g.cartMutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncCheckout counts one checkout submission by outcome.
func (g *GatewayMetrics) IncCheckout(outcome string) {
	if g == nil || g.checkouts == nil {
		return
	}
	g.checkouts.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncPaymentResult counts one resolved payment result by status.
func (g *GatewayMetrics) IncPaymentResult(status string) {
	if g == nil || g.paymentResults == nil {
		return
	}
	g.paymentResults.WithLabelValues(normalizeLabel(status)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
