// Package metrics defines the Prometheus metrics of the order engine. It is
// the single source of truth for metric names, labels and help strings.
//
// All methods are safe on a nil *Metrics, which records nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "grabbit"

type Metrics struct {
	ordersCreated    prometheus.Counter
	acceptAttempts   *prometheus.CounterVec
	transitions      *prometheus.CounterVec
	ordersExpired    prometheus.Counter
	outboxPublished  prometheus.Counter
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	idempotentReplay prometheus.Counter
}

// New registers all metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ordersCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Total number of orders created.",
		}),
		// Label:
		//   - outcome: success, already_assigned, not_found, expired, unknown
		acceptAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_accept_attempts_total",
			Help:      "Total number of accept attempts, labelled by arbiter outcome.",
		}, []string{"outcome"}),
		// Label:
		//   - target: the status the order moved to
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transitions_total",
			Help:      "Total number of successful order status transitions, labelled by target status.",
		}, []string{"target"}),
		ordersExpired: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_expired_total",
			Help:      "Total number of orders expired by the sweeper.",
		}),
		outboxPublished: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_messages_published_total",
			Help:      "Total number of outbox messages delivered to the broker.",
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests, labelled by method, route and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		idempotentReplay: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_create_replays_total",
			Help:      "Total number of create requests answered from an idempotency key.",
		}),
	}
}

func (m *Metrics) OrderCreated() {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
}

func (m *Metrics) AcceptAttempt(outcome string) {
	if m == nil {
		return
	}
	m.acceptAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Transition(target string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(target).Inc()
}

func (m *Metrics) OrdersExpired(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ordersExpired.Add(float64(n))
}

func (m *Metrics) OutboxPublished(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.outboxPublished.Add(float64(n))
}

func (m *Metrics) CreateReplayed() {
	if m == nil {
		return
	}
	m.idempotentReplay.Inc()
}

func (m *Metrics) HTTPRequest(method, route string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
