package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		messagesSentTotal,
		chatRequestsTotal,
	)
}

var (
	messagesSentTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_messages_sent_total",
			Help: "Messages successfully persisted.",
		},
	)

	chatRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_requests_total",
			Help: "Chat request transitions (created/accepted/rejected).",
		},
		[]string{"transition"},
	)
)

func IncMessageSent() { messagesSentTotal.Inc() }

func IncChatRequest(transition string) {
	chatRequestsTotal.WithLabelValues(norm(transition)).Inc()
}
