// Package metrics exposes Prometheus counters for the portfolio API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what services and middleware report to.
type Recorder interface {
	RecordContactSubmission(result string)
	RecordLoginAttempt(success bool)
	RecordLoginAttemptWriteFailure()
	RecordPurge(deleted int64)
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
}

// Contact submission outcomes.
const (
	ContactSent        = "sent"
	ContactRateLimited = "rate_limited"
	ContactInvalid     = "invalid"
	ContactHoneypot    = "honeypot"
	ContactFailed      = "failed"
)

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	contactSubmissions  *prometheus.CounterVec
	loginAttempts       *prometheus.CounterVec
	loginAttemptFailure prometheus.Counter
	purgedAttempts      prometheus.Counter
	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
}

// NewCollector creates the collectors and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		contactSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_contact_submissions_total",
			Help: "Contact form submissions by outcome.",
		}, []string{"result"}),
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_login_attempts_total",
			Help: "Recorded admin login attempts by outcome.",
		}, []string{"success"}),
		loginAttemptFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portfolio_login_attempt_write_failures_total",
			Help: "Login attempts that could not be persisted.",
		}),
		purgedAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portfolio_login_attempts_purged_total",
			Help: "Login attempts removed by retention purges.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portfolio_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		c.contactSubmissions,
		c.loginAttempts,
		c.loginAttemptFailure,
		c.purgedAttempts,
		c.httpRequests,
		c.httpDuration,
	)

	return c
}

func (c *Collector) RecordContactSubmission(result string) {
	c.contactSubmissions.WithLabelValues(result).Inc()
}

func (c *Collector) RecordLoginAttempt(success bool) {
	c.loginAttempts.WithLabelValues(strconv.FormatBool(success)).Inc()
}

func (c *Collector) RecordLoginAttemptWriteFailure() {
	c.loginAttemptFailure.Inc()
}

func (c *Collector) RecordPurge(deleted int64) {
	c.purgedAttempts.Add(float64(deleted))
}

func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Noop discards everything. Used when metrics are not wired, e.g. in the CLI.
type Noop struct{}

func (Noop) RecordContactSubmission(string) {}
func (Noop) RecordLoginAttempt(bool) {}
func (Noop) RecordLoginAttemptWriteFailure() {}
func (Noop) RecordPurge(int64) {}
func (Noop) RecordHTTPRequest(string, string, int, time.Duration) {}

// Handler serves the registry in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
