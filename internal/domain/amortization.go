package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Method selects how installments are split between principal and interest.
type Method string

const (
	// MethodFrench keeps the total installment constant.
	MethodFrench Method = "french"
	// MethodGerman keeps the principal portion constant.
	MethodGerman Method = "german"
)

// ParseMethod converts a caller-supplied flag into a Method.
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case MethodFrench:
		return MethodFrench, nil
	case MethodGerman:
		return MethodGerman, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMethod, s)
	}
}

// IsValid reports whether m is one of the supported methods.
func (m Method) IsValid() bool {
	return m == MethodFrench || m == MethodGerman
}

// Amounts on emitted rows carry two fractional digits. Intermediate values
// keep workingPrecision digits so long schedules do not drift.
const (
	moneyPlaces      int32 = 2
	workingPrecision int32 = 28
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// CalculationParams is the input of a schedule calculation.
type CalculationParams struct {
	Amount             decimal.Decimal
	AnnualInterestRate decimal.Decimal // nominal percent, 24 means 24%
	TermMonths         int
	StartDate          time.Time
}

// Validate rejects parameters the engine cannot compute a schedule for.
func (p CalculationParams) Validate() error {
	if p.TermMonths <= 0 {
		return fmt.Errorf("%w: term must be positive, got %d", ErrInvalidParameter, p.TermMonths)
	}
	if !p.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidParameter, p.Amount)
	}
	if p.AnnualInterestRate.IsNegative() {
		return fmt.Errorf("%w: interest rate must not be negative, got %s", ErrInvalidParameter, p.AnnualInterestRate)
	}
	return nil
}

// MonthlyRate returns the periodic rate as a fraction (24% a year is 0.02).
func (p CalculationParams) MonthlyRate() decimal.Decimal {
	return p.AnnualInterestRate.DivRound(hundred.Mul(twelve), workingPrecision)
}

// AmortizationRow is one installment of a schedule.
type AmortizationRow struct {
	InstallmentNumber int
	DueDate           time.Time
	PrincipalAmount   decimal.Decimal
	InterestAmount    decimal.Decimal
	TotalAmount       decimal.Decimal
	RemainingBalance  decimal.Decimal
}

// GenerateSchedule builds the schedule for the given method.
func GenerateSchedule(method Method, params CalculationParams) ([]AmortizationRow, error) {
	switch method {
	case MethodFrench:
		return FrenchSchedule(params)
	case MethodGerman:
		return GermanSchedule(params)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, string(method))
	}
}

// FrenchSchedule builds a fixed-installment schedule. The interest portion
// shrinks and the principal portion grows as the balance is paid down.
func FrenchSchedule(params CalculationParams) ([]AmortizationRow, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	rate := params.MonthlyRate()
	installment := levelInstallment(params.Amount, rate, params.TermMonths)

	rows := make([]AmortizationRow, 0, params.TermMonths)
	balance := params.Amount

	for i := 1; i <= params.TermMonths; i++ {
		interest := balance.Mul(rate).Round(workingPrecision)
		principal := installment.Sub(interest)
		balance = balance.Sub(principal)

		rows = append(rows, newRow(params.StartDate, i, principal, interest, installment, balance))
	}

	return rows, nil
}

// GermanSchedule builds a fixed-principal schedule. The total installment
// shrinks with the interest charged on the outstanding balance.
func GermanSchedule(params CalculationParams) ([]AmortizationRow, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	rate := params.MonthlyRate()
	principal := params.Amount.DivRound(decimal.NewFromInt(int64(params.TermMonths)), workingPrecision)

	rows := make([]AmortizationRow, 0, params.TermMonths)
	balance := params.Amount

	for i := 1; i <= params.TermMonths; i++ {
		interest := balance.Mul(rate).Round(workingPrecision)
		total := principal.Add(interest)
		balance = balance.Sub(principal)

		rows = append(rows, newRow(params.StartDate, i, principal, interest, total, balance))
	}

	return rows, nil
}

// levelInstallment is the annuity payment P*r*(1+r)^n / ((1+r)^n - 1).
// A zero rate degenerates to an even split of the principal.
func levelInstallment(amount, rate decimal.Decimal, term int) decimal.Decimal {
	n := decimal.NewFromInt(int64(term))
	if rate.IsZero() {
		return amount.DivRound(n, workingPrecision)
	}

	factor := compound(decimal.NewFromInt(1).Add(rate), term)

	return amount.Mul(rate).Mul(factor).DivRound(factor.Sub(decimal.NewFromInt(1)), workingPrecision)
}

// compound raises base to term by squaring, trimming every product to the
// working precision so the digit count stays bounded for long terms.
func compound(base decimal.Decimal, term int) decimal.Decimal {
	result := decimal.NewFromInt(1)
	for term > 0 {
		if term%2 == 1 {
			result = result.Mul(base).Round(workingPrecision)
		}
		term /= 2
		if term > 0 {
			base = base.Mul(base).Round(workingPrecision)
		}
	}
	return result
}

func newRow(start time.Time, n int, principal, interest, total, balance decimal.Decimal) AmortizationRow {
	// The carried balance may drift a hair below zero on the last row.
	remaining := decimal.Max(balance, decimal.Zero)

	return AmortizationRow{
		InstallmentNumber: n,
		DueDate:           AddMonths(start, n),
		PrincipalAmount:   principal.Round(moneyPlaces),
		InterestAmount:    interest.Round(moneyPlaces),
		TotalAmount:       total.Round(moneyPlaces),
		RemainingBalance:  remaining.Round(moneyPlaces),
	}
}

// AddMonths advances t by the given number of calendar months. When the day
// does not exist in the target month it is clamped to that month's last day,
// so Jan 31 + 1 month is Feb 28 (or 29) rather than early March.
func AddMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()

	target := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(target.Year(), target.Month(), t.Location()); day > last {
		day = last
	}

	hour, minute, sec := t.Clock()

	return time.Date(target.Year(), target.Month(), day, hour, minute, sec, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// ScheduleSummary aggregates a schedule.
type ScheduleSummary struct {
	Installments   int
	TotalPrincipal decimal.Decimal
	TotalInterest  decimal.Decimal
	TotalPayments  decimal.Decimal
	FirstDueDate   time.Time
	LastDueDate    time.Time
}

// SummarizeSchedule totals the rounded amounts of a schedule.
func SummarizeSchedule(rows []AmortizationRow) ScheduleSummary {
	summary := ScheduleSummary{
		Installments:   len(rows),
		TotalPrincipal: decimal.Zero,
		TotalInterest:  decimal.Zero,
		TotalPayments:  decimal.Zero,
	}

	for _, row := range rows {
		summary.TotalPrincipal = summary.TotalPrincipal.Add(row.PrincipalAmount)
		summary.TotalInterest = summary.TotalInterest.Add(row.InterestAmount)
		summary.TotalPayments = summary.TotalPayments.Add(row.TotalAmount)
	}

	if len(rows) > 0 {
		summary.FirstDueDate = rows[0].DueDate
		summary.LastDueDate = rows[len(rows)-1].DueDate
	}

	return summary
}
