package plugins

import (
	"log/slog"
	"time"

	"bizsim/simulation/domain"

	"github.com/prometheus/client_golang/prometheus"
)

type LocalObserver struct {
	logger *slog.Logger
}

func NewLocalObserver(logger *slog.Logger) *LocalObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalObserver{logger: logger}
}

func (o *LocalObserver) MessageQueued(role domain.RoleRef, message *domain.Message, queueSize int) {
	o.logger.Debug("message queued", "role", role, "message", message.Id, "type", message.Type, "queue_size", queueSize)
}

func (o *LocalObserver) MessageDispatched(role domain.RoleRef, message *domain.Message, result domain.DispatchResult) {
	o.logger.Debug("message dispatched", "role", role, "message", message.Id, "type", message.Type, "result", result)
}

func (o *LocalObserver) DelayDrawn(role domain.RoleRef, delay time.Duration) {
	o.logger.Debug("delay drawn", "role", role, "delay", delay)
}

func (o *LocalObserver) SchedulingFailed(role domain.RoleRef, err error) {
	o.logger.Error("scheduling failed", "role", role, "error", err)
}

// PrometheusObserver exports dispatch activity as Prometheus metrics. Labels
// use the role name and message type, never actor ids, to keep cardinality bounded.
type PrometheusObserver struct {
	MessagesQueued     *prometheus.CounterVec
	MessagesDispatched *prometheus.CounterVec
	QueueSize          *prometheus.GaugeVec
	HandlingDelay      *prometheus.HistogramVec
	SchedulingFailures *prometheus.CounterVec
}

func NewPrometheusObserver(registerer prometheus.Registerer) (*PrometheusObserver, error) {
	o := &PrometheusObserver{
		MessagesQueued: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bizsim",
				Subsystem: "messages",
				Name:      "queued_total",
				Help:      "Total number of messages queued by delayed receivers",
			},
			[]string{"role", "type"},
		),
		MessagesDispatched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bizsim",
				Subsystem: "messages",
				Name:      "dispatched_total",
				Help:      "Total number of messages dispatched to a policy",
			},
			[]string{"role", "type", "outcome", "success"},
		),
		QueueSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "bizsim",
				Subsystem: "queue",
				Name:      "size",
				Help:      "Queue size observed at the last enqueue",
			},
			[]string{"role"},
		),
		HandlingDelay: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "bizsim",
				Subsystem: "handling",
				Name:      "delay_seconds",
				Help:      "Simulated handling delay drawn before each dispatch",
				Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
			},
			[]string{"role"},
		),
		SchedulingFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bizsim",
				Subsystem: "scheduler",
				Name:      "failures_total",
				Help:      "Total number of continuations the scheduler rejected",
			},
			[]string{"role"},
		),
	}

	for _, collector := range []prometheus.Collector{o.MessagesQueued, o.MessagesDispatched, o.QueueSize, o.HandlingDelay, o.SchedulingFailures} {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *PrometheusObserver) MessageQueued(role domain.RoleRef, message *domain.Message, queueSize int) {
	o.MessagesQueued.WithLabelValues(role.Role, string(message.Type)).Inc()
	o.QueueSize.WithLabelValues(role.Role).Set(float64(queueSize))
}

func (o *PrometheusObserver) MessageDispatched(role domain.RoleRef, message *domain.Message, result domain.DispatchResult) {
	success := "false"
	if result.Success {
		success = "true"
	}
	o.MessagesDispatched.WithLabelValues(role.Role, string(message.Type), result.Outcome.String(), success).Inc()
}

func (o *PrometheusObserver) DelayDrawn(role domain.RoleRef, delay time.Duration) {
	o.HandlingDelay.WithLabelValues(role.Role).Observe(delay.Seconds())
}

func (o *PrometheusObserver) SchedulingFailed(role domain.RoleRef, _ error) {
	o.SchedulingFailures.WithLabelValues(role.Role).Inc()
}

// MultiObserver forwards every notification to each of its observers in order.
type MultiObserver []domain.DispatchObserver

func (m MultiObserver) MessageQueued(role domain.RoleRef, message *domain.Message, queueSize int) {
	for _, o := range m {
		o.MessageQueued(role, message, queueSize)
	}
}

func (m MultiObserver) MessageDispatched(role domain.RoleRef, message *domain.Message, result domain.DispatchResult) {
	for _, o := range m {
		o.MessageDispatched(role, message, result)
	}
}

func (m MultiObserver) DelayDrawn(role domain.RoleRef, delay time.Duration) {
	for _, o := range m {
		o.DelayDrawn(role, delay)
	}
}

func (m MultiObserver) SchedulingFailed(role domain.RoleRef, err error) {
	for _, o := range m {
		o.SchedulingFailed(role, err)
	}
}
