package natsqueue

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metrics for the priority queue, one gauge/counter family per
// concern, labeled by priority where the teacher's single-queue gauges
// would otherwise collapse High/Medium/Low into one series.
var (
	queueLagMessages = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "natsqueue_lag_messages",
			Help: "Number of jobs pending in a priority stream, not yet delivered to a consumer.",
		},
		[]string{"priority"},
	)

	queueAckPendingMessages = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "natsqueue_ack_pending_messages",
			Help: "Number of jobs delivered but not yet acknowledged, per priority.",
		},
		[]string{"priority"},
	)

	jobsPushedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "natsqueue_jobs_pushed_total",
			Help: "Total number of jobs pushed, per priority.",
		},
		[]string{"priority"},
	)

	jobsAckedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "natsqueue_jobs_acked_total",
			Help: "Total number of jobs acknowledged as successfully processed, per priority.",
		},
		[]string{"priority"},
	)

	jobsNakedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "natsqueue_jobs_naked_total",
			Help: "Total number of jobs negatively acknowledged for retry, per priority.",
		},
		[]string{"priority"},
	)

	dlqMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "natsqueue_dlq_messages_total",
			Help: "Total number of jobs routed to the dead letter queue, by reason.",
		},
		[]string{"reason"},
	)

	natsReconnectsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "natsqueue_nats_reconnects_total",
			Help: "Total number of NATS reconnection events observed by this process.",
		},
	)

	metricsOnce sync.Once
)

func init() {
	metricsOnce.Do(func() {
		prometheus.DefaultRegisterer.MustRegister(
			queueLagMessages,
			queueAckPendingMessages,
			jobsPushedTotal,
			jobsAckedTotal,
			jobsNakedTotal,
			dlqMessagesTotal,
			natsReconnectsTotal,
		)
	})
}

// recordReconnect increments natsReconnectsTotal. The ReconnectHandler
// installed by defaultOptions (connect.go) calls it, mirroring the
// teacher's nats.ReconnectHandler wiring in its connect path.
func recordReconnect() {
	natsReconnectsTotal.Inc()
}
