package usecase

import (
	"context"
	"time"

	"github.com/iho/goloan/internal/domain"
)

// ClientRepository defines data access for clients.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Client, error)
	Update(ctx context.Context, client *domain.Client) error
	Delete(ctx context.Context, id string) error
}

// LoanRepository defines data access for loans.
type LoanRepository interface {
	Create(ctx context.Context, tx Transaction, loan *domain.Loan) error
	GetByID(ctx context.Context, id string) (*domain.Loan, error)
	List(ctx context.Context, filter LoanFilter) ([]*domain.Loan, error)
	Delete(ctx context.Context, tx Transaction, id string) error
}

// LoanFilter narrows a loan listing.
type LoanFilter struct {
	ClientID string
	Status   domain.LoanStatus
	Limit    int
	Offset   int
}

// ScheduleRepository defines data access for persisted installments.
type ScheduleRepository interface {
	CreateBatch(ctx context.Context, tx Transaction, installments []*domain.Installment) error
	ListByLoan(ctx context.Context, loanID string) ([]*domain.Installment, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Installment, error)
	MarkPaid(ctx context.Context, tx Transaction, id string, paidAt time.Time) error
	DeleteByLoan(ctx context.Context, tx Transaction, loanID string) error
}

// PaymentRepository defines data access for payments.
type PaymentRepository interface {
	Create(ctx context.Context, tx Transaction, payment *domain.Payment) error
	List(ctx context.Context, limit, offset int) ([]*domain.Payment, error)
	ListByLoan(ctx context.Context, loanID string) ([]*domain.Payment, error)
}

// DashboardRepository defines portfolio aggregate queries.
type DashboardRepository interface {
	Stats(ctx context.Context) (*domain.DashboardStats, error)
	LoanMethodCounts(ctx context.Context) ([]domain.MethodCount, error)
	MonthlyDisbursements(ctx context.Context, since time.Time) ([]domain.MonthlyDisbursement, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations. Get returns nil, nil on a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request failed so it can be retried.
	Release(ctx context.Context, key string) error
}
