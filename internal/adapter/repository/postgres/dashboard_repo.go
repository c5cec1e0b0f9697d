package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/goloan/internal/domain"
)

const (
	dashboardStatsSQL = `SELECT
	(SELECT COALESCE(SUM(amount), 0) FROM loans WHERE status = 'active'),
	(SELECT COUNT(*) FROM loans WHERE status = 'active'),
	(SELECT COUNT(*) FROM clients),
	(SELECT COALESCE(SUM(amount_paid), 0) FROM payments)`

	loanMethodCountsSQL = `SELECT method, COUNT(*) FROM loans GROUP BY method ORDER BY method`

	monthlyDisbursementsSQL = `SELECT to_char(date_trunc('month', disbursement_date), 'Mon YYYY'), SUM(amount)
	FROM loans
	WHERE disbursement_date IS NOT NULL AND disbursement_date >= $1
	GROUP BY date_trunc('month', disbursement_date)
	ORDER BY date_trunc('month', disbursement_date)`
)

// DashboardRepository implements usecase.DashboardRepository.
type DashboardRepository struct {
	db DBTX
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return newDashboardRepository(pool)
}

func newDashboardRepository(db DBTX) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// Stats returns portfolio totals.
func (r *DashboardRepository) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	var (
		activeAmount pgtype.Numeric
		activeCount  int64
		clients      int64
		collected    pgtype.Numeric
	)

	err := r.db.QueryRow(ctx, dashboardStatsSQL).Scan(&activeAmount, &activeCount, &clients, &collected)
	if err != nil {
		return nil, err
	}

	return &domain.DashboardStats{
		ActiveLoansAmount: numericToDecimal(activeAmount),
		ActiveLoansCount:  activeCount,
		TotalClients:      clients,
		TotalCollected:    numericToDecimal(collected),
	}, nil
}

// LoanMethodCounts returns the number of loans per amortization method.
func (r *DashboardRepository) LoanMethodCounts(ctx context.Context) ([]domain.MethodCount, error) {
	rows, err := r.db.Query(ctx, loanMethodCountsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []domain.MethodCount
	for rows.Next() {
		var (
			method string
			count  int64
		)
		if err := rows.Scan(&method, &count); err != nil {
			return nil, err
		}
		counts = append(counts, domain.MethodCount{Method: domain.Method(method), Count: count})
	}

	return counts, rows.Err()
}

// MonthlyDisbursements sums disbursed amounts per calendar month from since onward.
func (r *DashboardRepository) MonthlyDisbursements(ctx context.Context, since time.Time) ([]domain.MonthlyDisbursement, error) {
	rows, err := r.db.Query(ctx, monthlyDisbursementsSQL, timeToPgDate(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	months := []domain.MonthlyDisbursement{}
	for rows.Next() {
		var (
			month  string
			amount pgtype.Numeric
		)
		if err := rows.Scan(&month, &amount); err != nil {
			return nil, err
		}
		months = append(months, domain.MonthlyDisbursement{Month: month, Amount: numericToDecimal(amount)})
	}

	return months, rows.Err()
}
