package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
)

const paymentColumns = `id, loan_id, schedule_id, amount_paid, payment_date, method,
	reference_number, late_fee, notes, created_at`

const (
	insertPaymentSQL = `INSERT INTO payments (` + paymentColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	listPaymentsSQL = `SELECT ` + paymentColumns + ` FROM payments
	ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`

	listPaymentsByLoanSQL = `SELECT ` + paymentColumns + ` FROM payments
	WHERE loan_id = $1 ORDER BY created_at DESC, id DESC`
)

// PaymentRepository implements usecase.PaymentRepository.
type PaymentRepository struct {
	db DBTX
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return newPaymentRepository(pool)
}

func newPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts a payment within a transaction.
func (r *PaymentRepository) Create(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, insertPaymentSQL,
		payment.ID,
		payment.LoanID,
		stringPtrToPgText(payment.InstallmentID),
		decimalToNumeric(payment.AmountPaid),
		timeToPgTimestamptz(payment.PaymentDate),
		string(payment.Method),
		payment.ReferenceNumber,
		decimalToNumeric(payment.LateFee),
		payment.Notes,
		timeToPgTimestamptz(payment.CreatedAt),
	)

	return translateError(err, nil, domain.ErrLoanNotFound)
}

// List returns payments across all loans, newest first.
func (r *PaymentRepository) List(ctx context.Context, limit, offset int) ([]*domain.Payment, error) {
	return r.query(ctx, listPaymentsSQL, limit, offset)
}

// ListByLoan returns the payments of a loan, newest first.
func (r *PaymentRepository) ListByLoan(ctx context.Context, loanID string) ([]*domain.Payment, error) {
	return r.query(ctx, listPaymentsByLoanSQL, loanID)
}

func (r *PaymentRepository) query(ctx context.Context, sql string, args ...any) ([]*domain.Payment, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := []*domain.Payment{}
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}

	return payments, rows.Err()
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var (
		p           domain.Payment
		scheduleID  pgtype.Text
		amountPaid  pgtype.Numeric
		paymentDate time.Time
		method      string
		lateFee     pgtype.Numeric
		createdAt   time.Time
	)

	err := row.Scan(
		&p.ID,
		&p.LoanID,
		&scheduleID,
		&amountPaid,
		&paymentDate,
		&method,
		&p.ReferenceNumber,
		&lateFee,
		&p.Notes,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	p.InstallmentID = pgTextToStringPtr(scheduleID)
	p.AmountPaid = numericToDecimal(amountPaid)
	p.PaymentDate = paymentDate
	p.Method = domain.PaymentMethod(method)
	p.LateFee = numericToDecimal(lateFee)
	p.CreatedAt = createdAt

	return &p, nil
}
