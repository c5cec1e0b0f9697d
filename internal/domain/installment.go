package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InstallmentStatus tracks collection of a scheduled installment.
type InstallmentStatus string

const (
	InstallmentStatusPending InstallmentStatus = "pending"
	InstallmentStatusPaid    InstallmentStatus = "paid"
	InstallmentStatusOverdue InstallmentStatus = "overdue"
	InstallmentStatusPartial InstallmentStatus = "partial"
)

// IsValid checks if the status is known.
func (s InstallmentStatus) IsValid() bool {
	switch s {
	case InstallmentStatusPending, InstallmentStatusPaid,
		InstallmentStatusOverdue, InstallmentStatusPartial:
		return true
	}
	return false
}

// Installment is a persisted schedule row of a loan.
type Installment struct {
	ID               string
	LoanID           string
	Number           int
	DueDate          time.Time
	Principal        decimal.Decimal
	Interest         decimal.Decimal
	Total            decimal.Decimal
	RemainingBalance decimal.Decimal
	Status           InstallmentStatus
	PaidAt           *time.Time
}

// IsPaid reports whether the installment has been settled.
func (i *Installment) IsPaid() bool {
	return i.Status == InstallmentStatusPaid
}

// NewInstallments turns engine rows into pending installments of a loan.
// newID is called once per row.
func NewInstallments(loanID string, rows []AmortizationRow, newID func() string) []*Installment {
	installments := make([]*Installment, 0, len(rows))
	for _, row := range rows {
		installments = append(installments, &Installment{
			ID:               newID(),
			LoanID:           loanID,
			Number:           row.InstallmentNumber,
			DueDate:          row.DueDate,
			Principal:        row.PrincipalAmount,
			Interest:         row.InterestAmount,
			Total:            row.TotalAmount,
			RemainingBalance: row.RemainingBalance,
			Status:           InstallmentStatusPending,
		})
	}
	return installments
}
