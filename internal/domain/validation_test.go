package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestValidateName(t *testing.T) {
	t.Parallel()

	t.Run("valid name", func(t *testing.T) {
		if err := ValidateName("María José"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("empty name rejected", func(t *testing.T) {
		err := ValidateName("   ")
		if !errors.Is(err, ErrInvalidClientName) {
			t.Fatalf("expected ErrInvalidClientName, got %v", err)
		}
	})

	t.Run("name too long", func(t *testing.T) {
		err := ValidateName(strings.Repeat("a", MaxNameLength+1))
		if !errors.Is(err, ErrInvalidClientName) {
			t.Fatalf("expected ErrInvalidClientName, got %v", err)
		}
	})
}

func TestValidateNationalID(t *testing.T) {
	t.Parallel()

	if err := ValidateNationalID("001-1234567-8"); err != nil {
		t.Fatalf("expected valid id, got %v", err)
	}

	if err := ValidateNationalID(""); !errors.Is(err, ErrInvalidNationalID) {
		t.Fatalf("expected ErrInvalidNationalID, got %v", err)
	}

	if err := ValidateNationalID(strings.Repeat("9", MaxNationalIDLength+1)); !errors.Is(err, ErrInvalidNationalID) {
		t.Fatalf("expected ErrInvalidNationalID for long id, got %v", err)
	}
}

func TestValidateAmount(t *testing.T) {
	t.Parallel()

	if err := ValidateAmount(decimal.NewFromFloat(100.25)); err != nil {
		t.Fatalf("expected valid amount, got %v", err)
	}

	if err := ValidateAmount(decimal.Zero); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero, got %v", err)
	}

	if err := ValidateAmount(decimal.NewFromFloat(0.001)); !errors.Is(err, ErrAmountTooSmall) {
		t.Fatalf("expected ErrAmountTooSmall, got %v", err)
	}

	huge := decimal.RequireFromString(MaxLoanAmount).Add(decimal.NewFromInt(1))
	if err := ValidateAmount(huge); !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected ErrAmountTooLarge, got %v", err)
	}
}

func TestValidateInterestRate(t *testing.T) {
	t.Parallel()

	for _, rate := range []string{"0", "12.5", "100"} {
		if err := ValidateInterestRate(decimal.RequireFromString(rate)); err != nil {
			t.Fatalf("expected rate %s to be valid, got %v", rate, err)
		}
	}

	if err := ValidateInterestRate(decimal.NewFromInt(-1)); !errors.Is(err, ErrInvalidRate) {
		t.Fatalf("expected ErrInvalidRate for negative rate, got %v", err)
	}

	if err := ValidateInterestRate(decimal.RequireFromString("100.01")); !errors.Is(err, ErrInvalidRate) {
		t.Fatalf("expected ErrInvalidRate above max, got %v", err)
	}
}

func TestValidateTermMonths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		term    int
		wantErr bool
	}{
		{term: 1},
		{term: 360},
		{term: MaxTermMonths},
		{term: 0, wantErr: true},
		{term: -12, wantErr: true},
		{term: MaxTermMonths + 1, wantErr: true},
	}

	for _, tt := range tests {
		err := ValidateTermMonths(tt.term)
		if tt.wantErr && !errors.Is(err, ErrInvalidTerm) {
			t.Fatalf("term %d: expected ErrInvalidTerm, got %v", tt.term, err)
		}
		if !tt.wantErr && err != nil {
			t.Fatalf("term %d: unexpected error %v", tt.term, err)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	if err := ValidateEmail("USER@example.com"); err != nil {
		t.Fatalf("expected valid email, got %v", err)
	}

	if err := ValidateEmail(""); err != nil {
		t.Fatalf("expected empty email to be allowed, got %v", err)
	}

	if err := ValidateEmail("invalid-email"); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestValidateClient(t *testing.T) {
	t.Parallel()

	income := decimal.NewFromInt(-5)
	valid := func() *Client {
		return &Client{
			NationalID: "402-0000000-1",
			FirstName:  "Ana",
			LastName:   "Pérez",
			Status:     ClientStatusActive,
		}
	}

	if err := ValidateClient(valid()); err != nil {
		t.Fatalf("expected valid client, got %v", err)
	}

	c := valid()
	c.Status = "archived"
	if err := ValidateClient(c); !errors.Is(err, ErrInvalidClientStatus) {
		t.Fatalf("expected ErrInvalidClientStatus, got %v", err)
	}

	c = valid()
	c.MonthlyIncome = &income
	if err := ValidateClient(c); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for negative income, got %v", err)
	}
}

func TestValidateLoan(t *testing.T) {
	t.Parallel()

	first := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	valid := func() *Loan {
		return &Loan{
			LoanNumber:       "PR-0001",
			Amount:           decimal.NewFromInt(5000),
			InterestRate:     decimal.NewFromInt(18),
			TermMonths:       24,
			Method:           MethodFrench,
			Status:           LoanStatusActive,
			FirstPaymentDate: &first,
		}
	}

	if err := ValidateLoan(valid()); err != nil {
		t.Fatalf("expected valid loan, got %v", err)
	}

	l := valid()
	l.Method = "american"
	if err := ValidateLoan(l); !errors.Is(err, ErrInvalidMethod) {
		t.Fatalf("expected ErrInvalidMethod, got %v", err)
	}

	l = valid()
	l.Status = "closed"
	if err := ValidateLoan(l); !errors.Is(err, ErrInvalidLoanStatus) {
		t.Fatalf("expected ErrInvalidLoanStatus, got %v", err)
	}

	l = valid()
	zero := decimal.Zero
	l.ApprovedAmount = &zero
	if err := ValidateLoan(l); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero approved amount, got %v", err)
	}

	l = valid()
	l.TermMonths = 0
	if err := ValidateLoan(l); !errors.Is(err, ErrInvalidTerm) {
		t.Fatalf("expected ErrInvalidTerm, got %v", err)
	}
}

func TestValidatePagination(t *testing.T) {
	t.Parallel()

	limit, offset := ValidatePagination(0, -3)
	if limit != 20 || offset != 0 {
		t.Fatalf("expected defaults 20/0, got %d/%d", limit, offset)
	}

	limit, _ = ValidatePagination(5000, 0)
	if limit != 100 {
		t.Fatalf("expected limit capped at 100, got %d", limit)
	}
}
