package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
)

const loanColumns = `id, client_id, loan_number, amount, approved_amount, interest_rate,
	term_months, method, purpose, status, disbursement_date, first_payment_date, created_at`

const (
	insertLoanSQL = `INSERT INTO loans (` + loanColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	getLoanSQL = `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	listLoansSQL = `SELECT ` + loanColumns + ` FROM loans
	WHERE ($1 = '' OR client_id = $1) AND ($2 = '' OR status = $2)
	ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4`

	deleteLoanSQL = `DELETE FROM loans WHERE id = $1`
)

// LoanRepository implements usecase.LoanRepository.
type LoanRepository struct {
	db DBTX
}

// NewLoanRepository creates a new LoanRepository.
func NewLoanRepository(pool *pgxpool.Pool) *LoanRepository {
	return newLoanRepository(pool)
}

func newLoanRepository(db DBTX) *LoanRepository {
	return &LoanRepository{db: db}
}

// Create inserts a loan within a transaction.
func (r *LoanRepository) Create(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, insertLoanSQL,
		loan.ID,
		loan.ClientID,
		loan.LoanNumber,
		decimalToNumeric(loan.Amount),
		decimalPtrToNumeric(loan.ApprovedAmount),
		decimalToNumeric(loan.InterestRate),
		loan.TermMonths,
		string(loan.Method),
		loan.Purpose,
		string(loan.Status),
		timePtrToPgDate(loan.DisbursementDate),
		timePtrToPgDate(loan.FirstPaymentDate),
		timeToPgTimestamptz(loan.CreatedAt),
	)

	return translateError(err, domain.ErrDuplicateLoan, domain.ErrClientNotFound)
}

// GetByID retrieves a loan by ID without its schedule.
func (r *LoanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	loan, err := scanLoan(r.db.QueryRow(ctx, getLoanSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}

		return nil, err
	}

	return loan, nil
}

// List returns loans newest first, optionally narrowed by client and status.
func (r *LoanRepository) List(ctx context.Context, filter usecase.LoanFilter) ([]*domain.Loan, error) {
	rows, err := r.db.Query(ctx, listLoansSQL, filter.ClientID, string(filter.Status), filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	loans := make([]*domain.Loan, 0, filter.Limit)
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}

	return loans, rows.Err()
}

// Delete removes a loan within a transaction.
func (r *LoanRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, deleteLoanSQL, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrLoanNotFound
	}

	return nil
}

func scanLoan(row pgx.Row) (*domain.Loan, error) {
	var (
		l                domain.Loan
		amount           pgtype.Numeric
		approvedAmount   pgtype.Numeric
		interestRate     pgtype.Numeric
		termMonths       int32
		method           string
		status           string
		disbursementDate pgtype.Date
		firstPayment     pgtype.Date
		createdAt        time.Time
	)

	err := row.Scan(
		&l.ID,
		&l.ClientID,
		&l.LoanNumber,
		&amount,
		&approvedAmount,
		&interestRate,
		&termMonths,
		&method,
		&l.Purpose,
		&status,
		&disbursementDate,
		&firstPayment,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	l.Amount = numericToDecimal(amount)
	l.ApprovedAmount = numericToDecimalPtr(approvedAmount)
	l.InterestRate = numericToDecimal(interestRate)
	l.TermMonths = int(termMonths)
	l.Method = domain.Method(method)
	l.Status = domain.LoanStatus(status)
	l.DisbursementDate = pgDateToTimePtr(disbursementDate)
	l.FirstPaymentDate = pgDateToTimePtr(firstPayment)
	l.CreatedAt = createdAt

	return &l, nil
}
