package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	AssistantRepliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_replies_total",
			Help: "Assistant replies by assistant, mode (canned or ai) and result.",
		},
		[]string{"assistant", "mode", "result"},
	)

	AuthActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_actions_total",
			Help: "Auth actions by action and result.",
		},
		[]string{"action", "result"},
	)

	ChatHistoryWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_history_writes_total",
			Help: "Chat history writes by result.",
		},
		[]string{"result"},
	)
)

const (
	ResultOK    = "ok"
	ResultError = "error"
)

func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		AssistantRepliesTotal,
		AuthActionsTotal,
		ChatHistoryWritesTotal,
	)
}
