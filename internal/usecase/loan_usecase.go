package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/infrastructure/metrics"
)

// LoanUseCase handles loan origination and schedule logic.
type LoanUseCase struct {
	txManager    TransactionManager
	clientRepo   ClientRepository
	loanRepo     LoanRepository
	scheduleRepo ScheduleRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator

	retrier  Retrier
	cache    Cache
	cacheTTL time.Duration
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewLoanUseCase creates a new LoanUseCase.
func NewLoanUseCase(
	txManager TransactionManager,
	clientRepo ClientRepository,
	loanRepo LoanRepository,
	scheduleRepo ScheduleRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
) *LoanUseCase {
	return &LoanUseCase{
		txManager:    txManager,
		clientRepo:   clientRepo,
		loanRepo:     loanRepo,
		scheduleRepo: scheduleRepo,
		outboxRepo:   outboxRepo,
		idGen:        idGen,
		cacheTTL:     DefaultScheduleCacheTTL,
		logger:       zerolog.Nop(),
	}
}

// WithRetrier retries origination and deletion on transient database errors.
func (uc *LoanUseCase) WithRetrier(r Retrier) *LoanUseCase {
	uc.retrier = r
	return uc
}

// WithScheduleCache caches schedule previews.
func (uc *LoanUseCase) WithScheduleCache(cache Cache, ttl time.Duration) *LoanUseCase {
	uc.cache = cache
	if ttl > 0 {
		uc.cacheTTL = ttl
	}
	return uc
}

// WithMetrics records loan and schedule metrics.
func (uc *LoanUseCase) WithMetrics(m *metrics.Metrics) *LoanUseCase {
	uc.metrics = m
	return uc
}

// WithLogger sets the logger.
func (uc *LoanUseCase) WithLogger(logger zerolog.Logger) *LoanUseCase {
	uc.logger = logger
	return uc
}

// CreateLoanInput represents input for originating a loan.
type CreateLoanInput struct {
	ApprovedAmount   *decimal.Decimal
	DisbursementDate *time.Time
	FirstPaymentDate *time.Time
	ClientID         string
	LoanNumber       string
	Purpose          string
	Method           domain.Method
	Status           domain.LoanStatus
	Amount           decimal.Decimal
	InterestRate     decimal.Decimal
	TermMonths       int
}

// CreateLoan originates a loan. Approved and active loans with a first
// payment date get their schedule stored in the same transaction.
func (uc *LoanUseCase) CreateLoan(ctx context.Context, input CreateLoanInput) (*domain.Loan, error) {
	method := input.Method
	if method == "" {
		method = domain.MethodFrench
	}
	status := input.Status
	if status == "" {
		status = domain.LoanStatusPending
	}

	loan := &domain.Loan{
		ID:               uc.idGen.Generate(),
		ClientID:         input.ClientID,
		LoanNumber:       strings.TrimSpace(input.LoanNumber),
		Amount:           input.Amount,
		ApprovedAmount:   input.ApprovedAmount,
		InterestRate:     input.InterestRate,
		TermMonths:       input.TermMonths,
		Method:           method,
		Purpose:          strings.TrimSpace(input.Purpose),
		Status:           status,
		DisbursementDate: input.DisbursementDate,
		FirstPaymentDate: input.FirstPaymentDate,
		CreatedAt:        time.Now().UTC(),
	}

	if err := domain.ValidateLoan(loan); err != nil {
		uc.metrics.LoanFailed("validation")
		return nil, err
	}

	client, err := uc.clientRepo.GetByID(ctx, loan.ClientID)
	if err != nil {
		uc.metrics.LoanFailed("client_lookup")
		return nil, err
	}
	if !client.CanBorrow() {
		uc.metrics.LoanFailed("client_not_eligible")
		return nil, domain.ErrClientNotEligible
	}

	if loan.NeedsSchedule() {
		started := time.Now()
		rows, err := domain.GenerateSchedule(loan.Method, loan.CalculationParams())
		if err != nil {
			uc.metrics.LoanFailed("schedule")
			return nil, err
		}
		uc.metrics.ObserveSchedule(string(loan.Method), len(rows), time.Since(started))

		loan.Schedule = domain.NewInstallments(loan.ID, rows, uc.idGen.Generate)
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   loan.ID,
		AggregateType: domain.AggregateTypeLoan,
		EventType:     domain.EventTypeLoanCreated,
		Payload: domain.LoanCreatedEvent{
			LoanID:       loan.ID,
			ClientID:     loan.ClientID,
			LoanNumber:   loan.LoanNumber,
			Principal:    loan.Principal().StringFixed(2),
			Method:       string(loan.Method),
			Status:       string(loan.Status),
			Installments: len(loan.Schedule),
		}.ToPayload(),
		CreatedAt: loan.CreatedAt,
	}

	err = uc.retry(ctx, func() error {
		return uc.createLoanTx(ctx, loan, event)
	})
	if err != nil {
		uc.metrics.LoanFailed("storage")
		return nil, err
	}

	principal, _ := loan.Principal().Float64()
	uc.metrics.LoanCreated(principal)

	loan.Client = client

	return loan, nil
}

func (uc *LoanUseCase) createLoanTx(ctx context.Context, loan *domain.Loan, event *domain.OutboxEvent) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.loanRepo.Create(txCtx, tx, loan); err != nil {
		return err
	}

	if len(loan.Schedule) > 0 {
		if err := uc.scheduleRepo.CreateBatch(txCtx, tx, loan.Schedule); err != nil {
			return err
		}
	}

	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return err
	}

	return tx.Commit(txCtx)
}

// GetLoan retrieves a loan with its client and schedule.
func (uc *LoanUseCase) GetLoan(ctx context.Context, id string) (*domain.Loan, error) {
	loan, err := uc.loanRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	client, err := uc.clientRepo.GetByID(ctx, loan.ClientID)
	if err != nil && !errors.Is(err, domain.ErrClientNotFound) {
		return nil, err
	}
	loan.Client = client

	schedule, err := uc.scheduleRepo.ListByLoan(ctx, id)
	if err != nil {
		return nil, err
	}
	loan.Schedule = schedule

	return loan, nil
}

// GetSchedule returns the stored installments of a loan ordered by number.
func (uc *LoanUseCase) GetSchedule(ctx context.Context, loanID string) ([]*domain.Installment, error) {
	if _, err := uc.loanRepo.GetByID(ctx, loanID); err != nil {
		return nil, err
	}

	return uc.scheduleRepo.ListByLoan(ctx, loanID)
}

// ListLoans lists loans, newest first.
func (uc *LoanUseCase) ListLoans(ctx context.Context, filter LoanFilter) ([]*domain.Loan, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, domain.ErrInvalidLoanStatus
	}

	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)

	return uc.loanRepo.List(ctx, filter)
}

// DeleteLoan removes a loan and its schedule.
func (uc *LoanUseCase) DeleteLoan(ctx context.Context, id string) error {
	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   id,
		AggregateType: domain.AggregateTypeLoan,
		EventType:     domain.EventTypeLoanDeleted,
		Payload:       domain.LoanDeletedEvent{LoanID: id}.ToPayload(),
		CreatedAt:     time.Now().UTC(),
	}

	err := uc.retry(ctx, func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := uc.txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		if err := uc.scheduleRepo.DeleteByLoan(txCtx, tx, id); err != nil {
			return err
		}
		if err := uc.loanRepo.Delete(txCtx, tx, id); err != nil {
			return err
		}
		if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
			return err
		}

		return tx.Commit(txCtx)
	})
	if err != nil {
		return err
	}

	uc.metrics.LoanDeleted()

	return nil
}

func (uc *LoanUseCase) retry(ctx context.Context, operation func() error) error {
	if uc.retrier == nil {
		return operation()
	}
	return uc.retrier.Retry(ctx, operation)
}
