package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(webhookDeliveriesTotal)
}

var webhookDeliveriesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "webhook_deliveries_total",
		Help: "Provider webhook deliveries by outcome (applied/duplicate/rejected/error).",
	},
	[]string{"outcome"},
)

func IncWebhookDelivery(outcome string) {
	webhookDeliveriesTotal.WithLabelValues(norm(outcome)).Inc()
}
