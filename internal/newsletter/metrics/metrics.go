// Package metrics holds the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeSuccess      = "success"
	OutcomeInvalid      = "invalid"
	OutcomeError        = "error"
	OutcomeDelivered    = "delivered"
	OutcomeSkipped      = "skipped"
	OutcomeFailed       = "failed"
	OutcomeUnauthorized = "unauthorized"
)

// Metrics is the set of collectors the services record into. A nil *Metrics
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	logins        *prometheus.CounterVec
	subscriptions *prometheus.CounterVec
	confirmations *prometheus.CounterVec
	deliveries    *prometheus.CounterVec
	publishes     *prometheus.CounterVec
	hashDuration  prometheus.Histogram
	purged        prometheus.Counter
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsletter_login_attempts_total",
			Help: "Credential checks by outcome",
		}, []string{"outcome"}),
		subscriptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsletter_subscriptions_total",
			Help: "Subscribe requests by outcome",
		}, []string{"outcome"}),
		confirmations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsletter_confirmations_total",
			Help: "Confirmation link visits by outcome",
		}, []string{"outcome"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsletter_issue_deliveries_total",
			Help: "Per-recipient newsletter deliveries by outcome",
		}, []string{"outcome"}),
		publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsletter_publishes_total",
			Help: "Publish requests by outcome",
		}, []string{"outcome"}),
		hashDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "newsletter_password_verify_duration_seconds",
			Help:    "Time spent verifying a password, including the worker queue",
			Buckets: prometheus.DefBuckets,
		}),
		purged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsletter_pending_subscriptions_purged_total",
			Help: "Unconfirmed subscriptions removed by housekeeping",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.logins,
		m.subscriptions,
		m.confirmations,
		m.deliveries,
		m.publishes,
		m.hashDuration,
		m.purged,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Login(outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Subscription(outcome string) {
	if m == nil {
		return
	}
	m.subscriptions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Confirmation(outcome string) {
	if m == nil {
		return
	}
	m.confirmations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Delivery(outcome string) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Publish(outcome string) {
	if m == nil {
		return
	}
	m.publishes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) PasswordVerify(d time.Duration) {
	if m == nil {
		return
	}
	m.hashDuration.Observe(d.Seconds())
}

func (m *Metrics) Purged(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.purged.Add(float64(n))
}
