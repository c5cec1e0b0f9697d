package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Client metrics
	ClientsCreated prometheus.Counter

	// Loan metrics
	LoansCreated prometheus.Counter
	LoansDeleted prometheus.Counter
	LoanAmount   prometheus.Histogram
	LoanErrors   *prometheus.CounterVec

	// Schedule metrics
	SchedulesGenerated   *prometheus.CounterVec
	ScheduleDuration     *prometheus.HistogramVec
	ScheduleInstallments prometheus.Histogram
	ScheduleCache        *prometheus.CounterVec

	// Payment metrics
	PaymentsRecorded *prometheus.CounterVec
	PaymentAmount    prometheus.Histogram

	// Outbox metrics
	OutboxPublished *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Rate limiting metrics
	RateLimitHits prometheus.Counter

	// Database metrics
	DBRetries *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates all metrics and registers them on reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Client metrics
		ClientsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "goloan_clients_created_total",
			Help: "Total number of clients registered",
		}),

		// Loan metrics
		LoansCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "goloan_loans_created_total",
			Help: "Total number of loans originated",
		}),
		LoansDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "goloan_loans_deleted_total",
			Help: "Total number of loans deleted",
		}),
		LoanAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "goloan_loan_principal",
			Help:    "Principal of originated loans",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
		}),
		LoanErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goloan_loan_errors_total",
				Help: "Total number of loan origination errors by type",
			},
			[]string{"error_type"},
		),

		// Schedule metrics
		SchedulesGenerated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goloan_schedules_generated_total",
				Help: "Total amortization schedules generated by method",
			},
			[]string{"method"},
		),
		ScheduleDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "goloan_schedule_duration_seconds",
				Help:    "Duration of schedule generation",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
			},
			[]string{"method"},
		),
		ScheduleInstallments: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "goloan_schedule_installments",
			Help:    "Number of installments per generated schedule",
			Buckets: []float64{1, 6, 12, 24, 36, 60, 120, 240, 360, 600},
		}),
		ScheduleCache: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goloan_schedule_cache_total",
				Help: "Schedule preview cache lookups by result",
			},
			[]string{"result"},
		),

		// Payment metrics
		PaymentsRecorded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goloan_payments_recorded_total",
				Help: "Total payments recorded by method",
			},
			[]string{"method"},
		),
		PaymentAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "goloan_payment_amount",
			Help:    "Payment amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000},
		}),

		// Outbox metrics
		OutboxPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goloan_outbox_events_total",
				Help: "Outbox events processed by result",
			},
			[]string{"status"},
		),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goloan_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "goloan_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "goloan_rate_limit_hits_total",
				Help: "Total requests rejected by the rate limiter",
			},
		),

		// Database metrics
		DBRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goloan_db_retries_total",
				Help: "Transactions retried after a transient database error, by SQLSTATE",
			},
			[]string{"code"},
		),
	}
}

// The helpers below are safe to call on a nil *Metrics.

// ObserveSchedule records a generated schedule.
func (m *Metrics) ObserveSchedule(method string, installments int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.SchedulesGenerated.WithLabelValues(method).Inc()
	m.ScheduleDuration.WithLabelValues(method).Observe(elapsed.Seconds())
	m.ScheduleInstallments.Observe(float64(installments))
}

// ObserveCache records a schedule cache lookup; result is "hit" or "miss".
func (m *Metrics) ObserveCache(result string) {
	if m == nil {
		return
	}
	m.ScheduleCache.WithLabelValues(result).Inc()
}

// ClientCreated records a new client.
func (m *Metrics) ClientCreated() {
	if m == nil {
		return
	}
	m.ClientsCreated.Inc()
}

// LoanCreated records an originated loan and its principal.
func (m *Metrics) LoanCreated(principal float64) {
	if m == nil {
		return
	}
	m.LoansCreated.Inc()
	m.LoanAmount.Observe(principal)
}

// LoanDeleted records a deleted loan.
func (m *Metrics) LoanDeleted() {
	if m == nil {
		return
	}
	m.LoansDeleted.Inc()
}

// LoanFailed records a failed origination.
func (m *Metrics) LoanFailed(errorType string) {
	if m == nil {
		return
	}
	m.LoanErrors.WithLabelValues(errorType).Inc()
}

// PaymentRecorded records a payment.
func (m *Metrics) PaymentRecorded(method string, amount float64) {
	if m == nil {
		return
	}
	m.PaymentsRecorded.WithLabelValues(method).Inc()
	m.PaymentAmount.Observe(amount)
}

// OutboxProcessed records one outbox event; status is "published" or "failed".
func (m *Metrics) OutboxProcessed(status string) {
	if m == nil {
		return
	}
	m.OutboxPublished.WithLabelValues(status).Inc()
}

// ObserveHTTP records a served request under its route pattern.
func (m *Metrics) ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// RateLimited records a request rejected by the rate limiter.
func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.RateLimitHits.Inc()
}

// DBRetried records a transaction retried after the given SQLSTATE.
func (m *Metrics) DBRetried(code string) {
	if m == nil {
		return
	}
	m.DBRetries.WithLabelValues(code).Inc()
}
