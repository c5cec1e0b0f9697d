package usecase

import (
	"context"
	"time"

	"github.com/iho/goloan/internal/domain"
)

// DashboardUseCase serves portfolio summaries.
type DashboardUseCase struct {
	repo DashboardRepository
	now  func() time.Time
}

// NewDashboardUseCase creates a new DashboardUseCase.
func NewDashboardUseCase(repo DashboardRepository) *DashboardUseCase {
	return &DashboardUseCase{
		repo: repo,
		now:  time.Now,
	}
}

// Stats returns the portfolio totals.
func (uc *DashboardUseCase) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	return uc.repo.Stats(ctx)
}

// LoanMethods returns the number of loans per amortization method. Both
// methods are always present.
func (uc *DashboardUseCase) LoanMethods(ctx context.Context) ([]domain.MethodCount, error) {
	counts, err := uc.repo.LoanMethodCounts(ctx)
	if err != nil {
		return nil, err
	}

	byMethod := make(map[domain.Method]int64, len(counts))
	for _, c := range counts {
		byMethod[c.Method] += c.Count
	}

	return []domain.MethodCount{
		{Method: domain.MethodFrench, Count: byMethod[domain.MethodFrench]},
		{Method: domain.MethodGerman, Count: byMethod[domain.MethodGerman]},
	}, nil
}

// Disbursements returns the amount disbursed per month over the current and
// previous five months.
func (uc *DashboardUseCase) Disbursements(ctx context.Context) ([]domain.MonthlyDisbursement, error) {
	return uc.repo.MonthlyDisbursements(ctx, DisbursementWindowStart(uc.now()))
}

// DisbursementWindowStart is the first day of the oldest month in the chart.
func DisbursementWindowStart(now time.Time) time.Time {
	now = now.UTC()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return domain.AddMonths(firstOfMonth, -(DisbursementMonths - 1))
}
