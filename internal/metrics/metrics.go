// Package metrics exposes Prometheus instruments for webhook admission.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "webhook"

// Request outcomes, one per response class.
const (
	OutcomeOK               = "ok"
	OutcomeNotFound         = "not_found"
	OutcomeRateLimited      = "rate_limited"
	OutcomeInvalidSignature = "invalid_signature"
	OutcomeError            = "error"
)

// Metrics holds the instruments. A nil *Metrics records nothing.
type Metrics struct {
	requests            *prometheus.CounterVec
	rateLimitRejections prometheus.Counter
	upsertDuration      prometheus.Histogram
	archiveFailures     prometheus.Counter
	panicsRecovered     prometheus.Counter
}

// New registers the instruments on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of webhook requests by outcome",
			},
			[]string{"outcome"},
		),
		rateLimitRejections: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ratelimit_rejections_total",
				Help:      "Total number of requests rejected by the rate limiter",
			},
		),
		upsertDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_upsert_duration_seconds",
				Help:      "Transaction store upsert latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		archiveFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "archive_failures_total",
				Help:      "Total number of payloads that could not be archived",
			},
		),
		panicsRecovered: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "panics_recovered_total",
				Help:      "Total number of panics recovered while handling a request",
			},
		),
	}
}

// Outcome maps a response status to its outcome label.
func Outcome(status int) string {
	switch {
	case status == http.StatusOK:
		return OutcomeOK
	case status == http.StatusNotFound:
		return OutcomeNotFound
	case status == http.StatusTooManyRequests:
		return OutcomeRateLimited
	case status == http.StatusUnauthorized:
		return OutcomeInvalidSignature
	default:
		return OutcomeError
	}
}

// ObserveResponse counts one response with the given status.
func (m *Metrics) ObserveResponse(status int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(Outcome(status)).Inc()
}

// RateLimited counts one request rejected by the rate limiter.
func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.rateLimitRejections.Inc()
}

// ObserveUpsert records the duration of one store upsert.
func (m *Metrics) ObserveUpsert(d time.Duration) {
	if m == nil {
		return
	}
	m.upsertDuration.Observe(d.Seconds())
}

// ArchiveFailed counts one payload that could not be archived.
func (m *Metrics) ArchiveFailed() {
	if m == nil {
		return
	}
	m.archiveFailures.Inc()
}

// PanicRecovered counts one panic caught by the handler.
func (m *Metrics) PanicRecovered() {
	if m == nil {
		return
	}
	m.panicsRecovered.Inc()
}
