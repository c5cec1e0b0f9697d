package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
)

var scheduleTable = pgx.Identifier{"amortization_schedule"}

var scheduleCopyColumns = []string{
	"id", "loan_id", "installment_number", "due_date", "principal_amount",
	"interest_amount", "total_amount", "remaining_balance", "status", "paid_at",
}

const installmentColumns = `id, loan_id, installment_number, due_date, principal_amount,
	interest_amount, total_amount, remaining_balance, status, paid_at`

const (
	listInstallmentsSQL = `SELECT ` + installmentColumns + ` FROM amortization_schedule
	WHERE loan_id = $1 ORDER BY installment_number`

	getInstallmentForUpdateSQL = `SELECT ` + installmentColumns + ` FROM amortization_schedule
	WHERE id = $1 FOR UPDATE`

	markInstallmentPaidSQL = `UPDATE amortization_schedule SET status = 'paid', paid_at = $2 WHERE id = $1`

	deleteInstallmentsByLoanSQL = `DELETE FROM amortization_schedule WHERE loan_id = $1`
)

// ScheduleRepository implements usecase.ScheduleRepository.
type ScheduleRepository struct {
	db DBTX
}

// NewScheduleRepository creates a new ScheduleRepository.
func NewScheduleRepository(pool *pgxpool.Pool) *ScheduleRepository {
	return newScheduleRepository(pool)
}

func newScheduleRepository(db DBTX) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// CreateBatch stores a full schedule with COPY within a transaction.
func (r *ScheduleRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, installments []*domain.Installment) error {
	if len(installments) == 0 {
		return nil
	}

	pgxTx := tx.(*Tx).PgxTx()

	copied, err := pgxTx.CopyFrom(ctx, scheduleTable, scheduleCopyColumns,
		pgx.CopyFromSlice(len(installments), func(i int) ([]any, error) {
			inst := installments[i]
			return []any{
				inst.ID,
				inst.LoanID,
				int32(inst.Number),
				timeToPgDate(inst.DueDate),
				decimalToNumeric(inst.Principal),
				decimalToNumeric(inst.Interest),
				decimalToNumeric(inst.Total),
				decimalToNumeric(inst.RemainingBalance),
				string(inst.Status),
				timePtrToPgTimestamptz(inst.PaidAt),
			}, nil
		}),
	)
	if err != nil {
		return translateError(err, nil, domain.ErrLoanNotFound)
	}

	if copied != int64(len(installments)) {
		return fmt.Errorf("copied %d of %d installments", copied, len(installments))
	}

	return nil
}

// ListByLoan returns a loan's installments ordered by number.
func (r *ScheduleRepository) ListByLoan(ctx context.Context, loanID string) ([]*domain.Installment, error) {
	rows, err := r.db.Query(ctx, listInstallmentsSQL, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var installments []*domain.Installment
	for rows.Next() {
		inst, err := scanInstallment(rows)
		if err != nil {
			return nil, err
		}
		installments = append(installments, inst)
	}

	return installments, rows.Err()
}

// GetByIDForUpdate retrieves an installment with a FOR UPDATE lock.
func (r *ScheduleRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Installment, error) {
	pgxTx := tx.(*Tx).PgxTx()

	inst, err := scanInstallment(pgxTx.QueryRow(ctx, getInstallmentForUpdateSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInstallmentNotFound
		}

		return nil, err
	}

	return inst, nil
}

// MarkPaid flags an installment as paid.
func (r *ScheduleRepository) MarkPaid(ctx context.Context, tx usecase.Transaction, id string, paidAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, markInstallmentPaidSQL, id, timeToPgTimestamptz(paidAt))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrInstallmentNotFound
	}

	return nil
}

// DeleteByLoan removes every installment of a loan.
func (r *ScheduleRepository) DeleteByLoan(ctx context.Context, tx usecase.Transaction, loanID string) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, deleteInstallmentsByLoanSQL, loanID)

	return err
}

func scanInstallment(row pgx.Row) (*domain.Installment, error) {
	var (
		inst      domain.Installment
		number    int32
		dueDate   pgtype.Date
		principal pgtype.Numeric
		interest  pgtype.Numeric
		total     pgtype.Numeric
		balance   pgtype.Numeric
		status    string
		paidAt    pgtype.Timestamptz
	)

	err := row.Scan(
		&inst.ID,
		&inst.LoanID,
		&number,
		&dueDate,
		&principal,
		&interest,
		&total,
		&balance,
		&status,
		&paidAt,
	)
	if err != nil {
		return nil, err
	}

	inst.Number = int(number)
	if d := pgDateToTimePtr(dueDate); d != nil {
		inst.DueDate = *d
	}
	inst.Principal = numericToDecimal(principal)
	inst.Interest = numericToDecimal(interest)
	inst.Total = numericToDecimal(total)
	inst.RemainingBalance = numericToDecimal(balance)
	inst.Status = domain.InstallmentStatus(status)
	inst.PaidAt = pgTimestamptzToTimePtr(paidAt)

	return &inst, nil
}
