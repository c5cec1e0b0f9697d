package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/iho/goloan/internal/infrastructure/metrics"
)

// SQLSTATEs worth running the whole transaction again for. A lock timeout
// shows up when two payments race for the same installment row.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
	pgErrLockNotAvailable     = "55P03"
)

// Retrier implements usecase.Retrier. Each attempt must open its own
// transaction; a failed attempt is rolled back before the next one starts.
type Retrier struct {
	logger  zerolog.Logger
	metrics *metrics.Metrics

	maxRetries      uint64
	initialInterval time.Duration
	maxInterval     time.Duration
}

// NewRetrier creates a retrier allowing three retries, starting at 50ms.
func NewRetrier(logger zerolog.Logger) *Retrier {
	return &Retrier{
		logger:          logger.With().Str("component", "retrier").Logger(),
		maxRetries:      3,
		initialInterval: 50 * time.Millisecond,
		maxInterval:     time.Second,
	}
}

// WithMetrics counts retries by SQLSTATE.
func (r *Retrier) WithMetrics(m *metrics.Metrics) *Retrier {
	r.metrics = m
	return r
}

// Retry runs operation until it succeeds, fails with a non-transient error,
// runs out of retries, or ctx is done.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	b.MaxElapsedTime = 0 // bounded by maxRetries and ctx

	policy := backoff.WithContext(backoff.WithMaxRetries(b, r.maxRetries), ctx)

	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		err := operation()
		if err != nil && retryableCode(err) == "" {
			return backoff.Permanent(err)
		}
		return err
	}, policy, func(err error, next time.Duration) {
		code := retryableCode(err)
		r.metrics.DBRetried(code)
		r.logger.Warn().
			Err(err).
			Str("sqlstate", code).
			Int("attempt", attempt).
			Dur("backoff", next).
			Msg("transient database error, retrying transaction")
	})
}

// retryableCode returns the SQLSTATE of a transient error, or "" when err
// must not be retried.
func retryableCode(err error) string {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return ""
	}

	switch pgErr.Code {
	case pgErrDeadlock, pgErrSerializationFailure, pgErrLockNotAvailable:
		return pgErr.Code
	default:
		return ""
	}
}
