package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus is the lifecycle state of a loan.
type LoanStatus string

const (
	LoanStatusPending   LoanStatus = "pending"
	LoanStatusApproved  LoanStatus = "approved"
	LoanStatusActive    LoanStatus = "active"
	LoanStatusPaid      LoanStatus = "paid"
	LoanStatusRejected  LoanStatus = "rejected"
	LoanStatusDefaulted LoanStatus = "defaulted"
)

// IsValid checks if the status is known.
func (s LoanStatus) IsValid() bool {
	switch s {
	case LoanStatusPending, LoanStatusApproved, LoanStatusActive,
		LoanStatusPaid, LoanStatusRejected, LoanStatusDefaulted:
		return true
	}
	return false
}

// Loan is a credit granted to a client.
type Loan struct {
	ID               string
	ClientID         string
	LoanNumber       string
	Amount           decimal.Decimal
	ApprovedAmount   *decimal.Decimal
	InterestRate     decimal.Decimal
	TermMonths       int
	Method           Method
	Purpose          string
	Status           LoanStatus
	DisbursementDate *time.Time
	FirstPaymentDate *time.Time
	CreatedAt        time.Time

	Client   *Client
	Schedule []*Installment
}

// Principal is the amount financed: the approved amount when set, otherwise
// the requested one.
func (l *Loan) Principal() decimal.Decimal {
	if l.ApprovedAmount != nil && l.ApprovedAmount.IsPositive() {
		return *l.ApprovedAmount
	}
	return l.Amount
}

// NeedsSchedule reports whether a schedule is generated when the loan is
// originated. Only approved or active loans with a first payment date get one.
func (l *Loan) NeedsSchedule() bool {
	if l.FirstPaymentDate == nil {
		return false
	}
	return l.Status == LoanStatusActive || l.Status == LoanStatusApproved
}

// CalculationParams derives the engine input for this loan.
func (l *Loan) CalculationParams() CalculationParams {
	var start time.Time
	if l.FirstPaymentDate != nil {
		start = *l.FirstPaymentDate
	}

	return CalculationParams{
		Amount:             l.Principal(),
		AnnualInterestRate: l.InterestRate,
		TermMonths:         l.TermMonths,
		StartDate:          start,
	}
}
