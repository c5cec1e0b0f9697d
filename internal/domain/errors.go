package domain

import "errors"

var (
	// Calculation errors
	ErrInvalidParameter = errors.New("invalid calculation parameter")
	ErrInvalidMethod    = errors.New("invalid amortization method")

	// Client errors
	ErrClientNotFound      = errors.New("client not found")
	ErrDuplicateClient     = errors.New("client with this national id already exists")
	ErrInvalidClientStatus = errors.New("invalid client status")
	ErrClientHasLoans      = errors.New("client has loans")
	ErrClientNotEligible   = errors.New("client is not eligible for new loans")

	// Loan errors
	ErrLoanNotFound      = errors.New("loan not found")
	ErrDuplicateLoan     = errors.New("loan with this number already exists")
	ErrInvalidLoanStatus = errors.New("invalid loan status")
	ErrInvalidAmount     = errors.New("amount must be positive")

	// Installment errors
	ErrInstallmentNotFound      = errors.New("installment not found")
	ErrInstallmentLoanMismatch  = errors.New("installment does not belong to loan")
	ErrInstallmentAlreadyPaid   = errors.New("installment already paid")
	ErrInvalidPaymentMethod     = errors.New("invalid payment method")
	ErrInvalidInstallmentStatus = errors.New("invalid installment status")
)
