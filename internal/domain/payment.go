package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how a payment was received.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodCard     PaymentMethod = "card"
)

// IsValid checks if the method is known.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodTransfer, PaymentMethodCard:
		return true
	}
	return false
}

// Payment is money received against a loan, optionally settling one
// installment.
type Payment struct {
	ID              string
	LoanID          string
	InstallmentID   *string
	AmountPaid      decimal.Decimal
	PaymentDate     time.Time
	Method          PaymentMethod
	ReferenceNumber string
	LateFee         decimal.Decimal
	Notes           string
	CreatedAt       time.Time
}

// Validate validates the payment amounts and method.
func (p *Payment) Validate() error {
	if !p.AmountPaid.IsPositive() {
		return ErrInvalidAmount
	}
	if p.LateFee.IsNegative() {
		return ErrInvalidAmount
	}
	if !p.Method.IsValid() {
		return ErrInvalidPaymentMethod
	}
	return nil
}
