package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
	"github.com/iho/goloan/internal/usecase/mocks"
)

type loanFixture struct {
	clients  *mocks.MockClientRepository
	loans    *mocks.MockLoanRepository
	schedule *mocks.MockScheduleRepository
	outbox   *mocks.MockOutboxRepository
	txMgr    *mocks.MockTransactionManager
	tx       *mocks.MockTransaction
	uc       *usecase.LoanUseCase
}

func newLoanFixture(t *testing.T) *loanFixture {
	t.Helper()

	f := &loanFixture{
		clients:  mocks.NewMockClientRepository(),
		loans:    mocks.NewMockLoanRepository(),
		schedule: mocks.NewMockScheduleRepository(),
		outbox:   mocks.NewMockOutboxRepository(),
		txMgr:    mocks.NewMockTransactionManager(),
		tx:       &mocks.MockTransaction{},
	}
	f.txMgr.BeginFunc = func(context.Context) (usecase.Transaction, error) { return f.tx, nil }

	if err := f.clients.Create(context.Background(), &domain.Client{
		ID:         "client-1",
		NationalID: "001-0000001-1",
		FirstName:  "Ana",
		LastName:   "García",
		Status:     domain.ClientStatusActive,
	}); err != nil {
		t.Fatalf("seed client: %v", err)
	}
	if err := f.clients.Create(context.Background(), &domain.Client{
		ID:         "client-blocked",
		NationalID: "001-0000002-2",
		FirstName:  "Luis",
		LastName:   "Mora",
		Status:     domain.ClientStatusBlocked,
	}); err != nil {
		t.Fatalf("seed client: %v", err)
	}

	f.uc = usecase.NewLoanUseCase(f.txMgr, f.clients, f.loans, f.schedule, f.outbox, mocks.NewMockIDGenerator())
	return f
}

func activeLoanInput() usecase.CreateLoanInput {
	first := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	return usecase.CreateLoanInput{
		ClientID:         "client-1",
		LoanNumber:       "PR-0001",
		Amount:           decimal.NewFromInt(12000),
		InterestRate:     decimal.NewFromInt(12),
		TermMonths:       12,
		Method:           domain.MethodFrench,
		Status:           domain.LoanStatusActive,
		FirstPaymentDate: &first,
	}
}

func TestLoanUseCase_CreateLoan_StoresSchedule(t *testing.T) {
	f := newLoanFixture(t)

	loan, err := f.uc.CreateLoan(context.Background(), activeLoanInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !f.tx.Committed {
		t.Fatal("expected transaction to be committed")
	}
	if len(loan.Schedule) != 12 {
		t.Fatalf("expected 12 installments, got %d", len(loan.Schedule))
	}
	if f.schedule.Count() != 12 {
		t.Fatalf("expected 12 stored installments, got %d", f.schedule.Count())
	}

	first := loan.Schedule[0]
	if first.Number != 1 || first.Status != domain.InstallmentStatusPending || first.LoanID != loan.ID {
		t.Fatalf("unexpected first installment: %+v", first)
	}
	if first.Total.StringFixed(2) != "1066.19" {
		t.Errorf("expected level installment 1066.19, got %s", first.Total.StringFixed(2))
	}
	if got := first.DueDate.Format(time.DateOnly); got != "2024-03-15" {
		t.Errorf("expected first due date 2024-03-15, got %s", got)
	}

	events := f.outbox.Events()
	if len(events) != 1 || events[0].EventType != domain.EventTypeLoanCreated {
		t.Fatalf("expected one loan.created event, got %+v", events)
	}
	if events[0].Payload["installments"] != 12 {
		t.Errorf("expected installments=12 in payload, got %v", events[0].Payload["installments"])
	}
	if loan.Client == nil || loan.Client.ID != "client-1" {
		t.Errorf("expected client to be attached")
	}
}

func TestLoanUseCase_CreateLoan_UsesApprovedAmount(t *testing.T) {
	f := newLoanFixture(t)

	input := activeLoanInput()
	input.Method = domain.MethodGerman
	input.Amount = decimal.NewFromInt(15000)
	approved := decimal.NewFromInt(12000)
	input.ApprovedAmount = &approved

	loan, err := f.uc.CreateLoan(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, inst := range loan.Schedule {
		if !inst.Principal.Equal(decimal.NewFromInt(1000)) {
			t.Fatalf("installment %d: expected principal 1000, got %s", inst.Number, inst.Principal)
		}
	}
	if !loan.Schedule[0].Total.Equal(decimal.NewFromInt(1120)) {
		t.Errorf("expected first total 1120, got %s", loan.Schedule[0].Total)
	}
}

func TestLoanUseCase_CreateLoan_PendingHasNoSchedule(t *testing.T) {
	f := newLoanFixture(t)

	f.schedule.CreateBatchFunc = func(context.Context, usecase.Transaction, []*domain.Installment) error {
		t.Fatal("no schedule expected for a pending loan")
		return nil
	}

	input := activeLoanInput()
	input.Status = ""

	loan, err := f.uc.CreateLoan(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loan.Status != domain.LoanStatusPending {
		t.Errorf("expected default status pending, got %s", loan.Status)
	}
	if len(loan.Schedule) != 0 {
		t.Errorf("expected no schedule, got %d rows", len(loan.Schedule))
	}
}

func TestLoanUseCase_CreateLoan_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*usecase.CreateLoanInput)
		setup   func(*loanFixture)
		wantErr error
	}{
		{
			name:    "unknown client",
			mutate:  func(in *usecase.CreateLoanInput) { in.ClientID = "missing" },
			wantErr: domain.ErrClientNotFound,
		},
		{
			name:    "blocked client",
			mutate:  func(in *usecase.CreateLoanInput) { in.ClientID = "client-blocked" },
			wantErr: domain.ErrClientNotEligible,
		},
		{
			name:    "unknown method",
			mutate:  func(in *usecase.CreateLoanInput) { in.Method = "american" },
			wantErr: domain.ErrInvalidMethod,
		},
		{
			name:    "zero term",
			mutate:  func(in *usecase.CreateLoanInput) { in.TermMonths = 0 },
			wantErr: domain.ErrInvalidTerm,
		},
		{
			name:    "rate above maximum",
			mutate:  func(in *usecase.CreateLoanInput) { in.InterestRate = decimal.NewFromInt(101) },
			wantErr: domain.ErrInvalidRate,
		},
		{
			name: "duplicate loan number",
			setup: func(f *loanFixture) {
				f.loans.CreateFunc = func(context.Context, usecase.Transaction, *domain.Loan) error {
					return domain.ErrDuplicateLoan
				}
			},
			wantErr: domain.ErrDuplicateLoan,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLoanFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}

			input := activeLoanInput()
			if tt.mutate != nil {
				tt.mutate(&input)
			}

			loan, err := f.uc.CreateLoan(context.Background(), input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if loan != nil {
				t.Fatalf("expected no loan, got %+v", loan)
			}
			if f.tx.Committed {
				t.Fatal("transaction must not be committed")
			}
		})
	}
}

func TestLoanUseCase_CreateLoan_ScheduleFailureAbortsTransaction(t *testing.T) {
	f := newLoanFixture(t)

	rolledBack := false
	f.tx.RollbackFunc = func(context.Context) error {
		rolledBack = true
		return nil
	}
	f.schedule.CreateBatchFunc = func(context.Context, usecase.Transaction, []*domain.Installment) error {
		return errors.New("insert failed")
	}

	_, err := f.uc.CreateLoan(context.Background(), activeLoanInput())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if f.tx.Committed {
		t.Fatal("transaction must not be committed")
	}
	if !rolledBack {
		t.Fatal("expected rollback")
	}
	if len(f.outbox.Events()) != 0 {
		t.Fatal("no event expected on failure")
	}
}

func TestLoanUseCase_CreateLoan_RetriesTransientErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newLoanFixture(t)

	attempts := 0
	f.loans.CreateFunc = func(context.Context, usecase.Transaction, *domain.Loan) error {
		attempts++
		if attempts == 1 {
			return &pgconn.PgError{Code: "40P01"}
		}
		return nil
	}

	retrier := mocks.NewMockRetrier(ctrl)
	retrier.EXPECT().Retry(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, op func() error) error {
			if err := op(); err == nil {
				return nil
			}
			return op()
		},
	)
	f.uc.WithRetrier(retrier)

	loan, err := f.uc.CreateLoan(context.Background(), activeLoanInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
	if f.schedule.Count() != len(loan.Schedule) {
		t.Fatalf("expected schedule stored once, got %d rows for %d installments", f.schedule.Count(), len(loan.Schedule))
	}
}

func TestLoanUseCase_GetLoan(t *testing.T) {
	f := newLoanFixture(t)
	ctx := context.Background()

	created, err := f.uc.CreateLoan(ctx, activeLoanInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	loan, err := f.uc.GetLoan(ctx, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loan.Schedule) != 12 {
		t.Fatalf("expected 12 installments, got %d", len(loan.Schedule))
	}
	for i, inst := range loan.Schedule {
		if inst.Number != i+1 {
			t.Fatalf("expected schedule ordered by number, got %d at %d", inst.Number, i)
		}
	}
	if loan.Client == nil || loan.Client.FullName() != "Ana García" {
		t.Errorf("expected client Ana García, got %+v", loan.Client)
	}

	if _, err := f.uc.GetLoan(ctx, "missing"); !errors.Is(err, domain.ErrLoanNotFound) {
		t.Fatalf("expected ErrLoanNotFound, got %v", err)
	}
	if _, err := f.uc.GetSchedule(ctx, "missing"); !errors.Is(err, domain.ErrLoanNotFound) {
		t.Fatalf("expected ErrLoanNotFound for schedule, got %v", err)
	}
}

func TestLoanUseCase_ListLoans(t *testing.T) {
	f := newLoanFixture(t)

	var got usecase.LoanFilter
	f.loans.ListFunc = func(_ context.Context, filter usecase.LoanFilter) ([]*domain.Loan, error) {
		got = filter
		return nil, nil
	}

	if _, err := f.uc.ListLoans(context.Background(), usecase.LoanFilter{Status: domain.LoanStatusActive, Limit: 500}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Limit != 100 || got.Status != domain.LoanStatusActive {
		t.Fatalf("unexpected filter passed to repository: %+v", got)
	}

	_, err := f.uc.ListLoans(context.Background(), usecase.LoanFilter{Status: "closed"})
	if !errors.Is(err, domain.ErrInvalidLoanStatus) {
		t.Fatalf("expected ErrInvalidLoanStatus, got %v", err)
	}
}

func TestLoanUseCase_DeleteLoan(t *testing.T) {
	f := newLoanFixture(t)
	ctx := context.Background()

	created, err := f.uc.CreateLoan(ctx, activeLoanInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := f.uc.DeleteLoan(ctx, created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.schedule.Count() != 0 {
		t.Fatalf("expected schedule removed, %d rows left", f.schedule.Count())
	}

	events := f.outbox.Events()
	if last := events[len(events)-1]; last.EventType != domain.EventTypeLoanDeleted {
		t.Fatalf("expected loan.deleted event, got %s", last.EventType)
	}

	if err := f.uc.DeleteLoan(ctx, created.ID); !errors.Is(err, domain.ErrLoanNotFound) {
		t.Fatalf("expected ErrLoanNotFound on second delete, got %v", err)
	}
}
