package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// IdempotencyProcessingMarker is stored under an idempotency key while
	// the first request carrying it is still running
	IdempotencyProcessingMarker = "processing"

	// DefaultScheduleCacheTTL is how long a schedule preview stays cached
	DefaultScheduleCacheTTL = time.Hour

	// DisbursementMonths is the window of the disbursement chart
	DisbursementMonths = 6

	scheduleCacheKeyPrefix = "schedule:"
)
