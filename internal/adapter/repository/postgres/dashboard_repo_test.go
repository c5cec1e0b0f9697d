package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"

	"github.com/iho/goloan/internal/domain"
)

func TestDashboardRepositoryStats(t *testing.T) {
	pool := newMockPool(t)
	repo := newDashboardRepository(pool)

	pool.ExpectQuery(dashboardStatsSQL).
		WillReturnRows(pgxmock.NewRows([]string{"active_amount", "active_count", "clients", "collected"}).
			AddRow(numeric("54000.00"), int64(3), int64(7), numeric("8120.40")))

	stats, err := repo.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !stats.ActiveLoansAmount.Equal(decimal.NewFromInt(54000)) || stats.ActiveLoansCount != 3 {
		t.Fatalf("unexpected active loans: %+v", stats)
	}
	if stats.TotalClients != 7 || !stats.TotalCollected.Equal(decimal.RequireFromString("8120.40")) {
		t.Fatalf("unexpected totals: %+v", stats)
	}

	assertExpectations(t, pool)
}

func TestDashboardRepositoryStatsError(t *testing.T) {
	pool := newMockPool(t)
	repo := newDashboardRepository(pool)

	boom := errors.New("connection reset")
	pool.ExpectQuery(dashboardStatsSQL).WillReturnError(boom)

	if _, err := repo.Stats(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected query error, got %v", err)
	}
}

func TestDashboardRepositoryLoanMethodCounts(t *testing.T) {
	pool := newMockPool(t)
	repo := newDashboardRepository(pool)

	pool.ExpectQuery(loanMethodCountsSQL).
		WillReturnRows(pgxmock.NewRows([]string{"method", "count"}).
			AddRow("french", int64(5)).
			AddRow("german", int64(2)))

	counts, err := repo.LoanMethodCounts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []domain.MethodCount{{Method: domain.MethodFrench, Count: 5}, {Method: domain.MethodGerman, Count: 2}}
	if len(counts) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(counts))
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Errorf("row %d: expected %+v, got %+v", i, want[i], counts[i])
		}
	}

	assertExpectations(t, pool)
}

func TestDashboardRepositoryMonthlyDisbursements(t *testing.T) {
	pool := newMockPool(t)
	repo := newDashboardRepository(pool)

	since := time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC)
	pool.ExpectQuery(monthlyDisbursementsSQL).
		WithArgs(date(2023, time.October, 1)).
		WillReturnRows(pgxmock.NewRows([]string{"month", "amount"}).
			AddRow("Oct 2023", numeric("15000.00")).
			AddRow("Jan 2024", numeric("9000.00")))

	months, err := repo.MonthlyDisbursements(context.Background(), since)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(months) != 2 || months[0].Month != "Oct 2023" || !months[1].Amount.Equal(decimal.NewFromInt(9000)) {
		t.Fatalf("unexpected months: %+v", months)
	}

	assertExpectations(t, pool)
}
