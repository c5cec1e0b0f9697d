package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/infrastructure/metrics"
)

// PaymentUseCase handles payment business logic.
type PaymentUseCase struct {
	txManager    TransactionManager
	loanRepo     LoanRepository
	scheduleRepo ScheduleRepository
	paymentRepo  PaymentRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
	retrier      Retrier
	metrics      *metrics.Metrics
}

// NewPaymentUseCase creates a new PaymentUseCase. retrier and m may be nil.
func NewPaymentUseCase(
	txManager TransactionManager,
	loanRepo LoanRepository,
	scheduleRepo ScheduleRepository,
	paymentRepo PaymentRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	retrier Retrier,
	m *metrics.Metrics,
) *PaymentUseCase {
	return &PaymentUseCase{
		txManager:    txManager,
		loanRepo:     loanRepo,
		scheduleRepo: scheduleRepo,
		paymentRepo:  paymentRepo,
		outboxRepo:   outboxRepo,
		idGen:        idGen,
		retrier:      retrier,
		metrics:      m,
	}
}

// RecordPaymentInput represents input for recording a payment.
type RecordPaymentInput struct {
	InstallmentID   *string
	PaymentDate     *time.Time
	LoanID          string
	Method          domain.PaymentMethod
	ReferenceNumber string
	Notes           string
	AmountPaid      decimal.Decimal
	LateFee         decimal.Decimal
}

// RecordPayment stores a payment and, when it targets an installment, marks
// that installment paid in the same transaction.
func (uc *PaymentUseCase) RecordPayment(ctx context.Context, input RecordPaymentInput) (*domain.Payment, error) {
	now := time.Now().UTC()

	method := input.Method
	if method == "" {
		method = domain.PaymentMethodCash
	}
	paymentDate := now
	if input.PaymentDate != nil {
		paymentDate = *input.PaymentDate
	}

	payment := &domain.Payment{
		ID:              uc.idGen.Generate(),
		LoanID:          input.LoanID,
		InstallmentID:   input.InstallmentID,
		AmountPaid:      input.AmountPaid,
		PaymentDate:     paymentDate,
		Method:          method,
		ReferenceNumber: strings.TrimSpace(input.ReferenceNumber),
		LateFee:         input.LateFee,
		Notes:           strings.TrimSpace(input.Notes),
		CreatedAt:       now,
	}

	if err := payment.Validate(); err != nil {
		return nil, err
	}

	if _, err := uc.loanRepo.GetByID(ctx, payment.LoanID); err != nil {
		return nil, err
	}

	recorded := domain.PaymentRecordedEvent{
		PaymentID:  payment.ID,
		LoanID:     payment.LoanID,
		AmountPaid: payment.AmountPaid.StringFixed(2),
		Method:     string(payment.Method),
	}
	if payment.InstallmentID != nil {
		recorded.InstallmentID = *payment.InstallmentID
	}
	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   payment.ID,
		AggregateType: domain.AggregateTypePayment,
		EventType:     domain.EventTypePaymentRecorded,
		Payload:       recorded.ToPayload(),
		CreatedAt:     now,
	}

	operation := func() error { return uc.recordPaymentTx(ctx, payment, event) }

	var err error
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, operation)
	} else {
		err = operation()
	}
	if err != nil {
		return nil, err
	}

	amount, _ := payment.AmountPaid.Float64()
	uc.metrics.PaymentRecorded(string(payment.Method), amount)

	return payment, nil
}

func (uc *PaymentUseCase) recordPaymentTx(ctx context.Context, payment *domain.Payment, event *domain.OutboxEvent) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if payment.InstallmentID != nil {
		installment, err := uc.scheduleRepo.GetByIDForUpdate(txCtx, tx, *payment.InstallmentID)
		if err != nil {
			return err
		}
		if installment.LoanID != payment.LoanID {
			return domain.ErrInstallmentLoanMismatch
		}
		if installment.IsPaid() {
			return domain.ErrInstallmentAlreadyPaid
		}

		if err := uc.scheduleRepo.MarkPaid(txCtx, tx, installment.ID, payment.CreatedAt); err != nil {
			return err
		}
	}

	if err := uc.paymentRepo.Create(txCtx, tx, payment); err != nil {
		return err
	}

	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return err
	}

	return tx.Commit(txCtx)
}

// ListPayments lists payments, newest first.
func (uc *PaymentUseCase) ListPayments(ctx context.Context, limit, offset int) ([]*domain.Payment, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.paymentRepo.List(ctx, limit, offset)
}

// ListPaymentsByLoan lists the payments of a loan, newest first.
func (uc *PaymentUseCase) ListPaymentsByLoan(ctx context.Context, loanID string) ([]*domain.Payment, error) {
	if _, err := uc.loanRepo.GetByID(ctx, loanID); err != nil {
		return nil, err
	}
	return uc.paymentRepo.ListByLoan(ctx, loanID)
}
