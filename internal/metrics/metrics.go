package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Reconcile counts the outcomes of the order/payment reconciliation engine.
type Reconcile struct {
	Settled       *prometheus.CounterVec
	WebhookEvents *prometheus.CounterVec
	Dropped       *prometheus.CounterVec
}

func NewReconcile(reg prometheus.Registerer) *Reconcile {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	settled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "checkout",
		Name:      "orders_settled_total",
		Help:      "Orders moved to a terminal status, by status.",
	}, []string{"status"})
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "checkout",
		Name:      "webhook_events_total",
		Help:      "Signature-verified webhook events received, by provider type.",
	}, []string{"type"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "checkout",
		Name:      "reconcile_dropped_total",
		Help:      "Reconciliation inputs absorbed without a state change, by reason.",
	}, []string{"reason"})

	reg.MustRegister(settled, events, dropped)
	return &Reconcile{Settled: settled, WebhookEvents: events, Dropped: dropped}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
