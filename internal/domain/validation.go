package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidClientName = errors.New("invalid client name")
	ErrInvalidNationalID = errors.New("invalid national id")
	ErrInvalidLoanNumber = errors.New("invalid loan number")
	ErrAmountTooLarge    = errors.New("amount exceeds maximum allowed")
	ErrAmountTooSmall    = errors.New("amount below minimum allowed")
	ErrInvalidRate       = errors.New("invalid interest rate")
	ErrInvalidTerm       = errors.New("invalid term")
	ErrInvalidEmail      = errors.New("invalid email format")
)

// Validation constants
const (
	MaxNameLength       = 255
	MaxNationalIDLength = 20
	MaxLoanNumberLength = 50
	MaxLoanAmount       = "1000000000000" // 1 trillion
	MinLoanAmount       = "0.01"
	MaxInterestRate     = 100
	MaxTermMonths       = 600
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateName validates a first or last name
func ValidateName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidClientName)
	}

	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidClientName, MaxNameLength)
	}

	return nil
}

// ValidateNationalID validates the identity document number
func ValidateNationalID(id string) error {
	id = strings.TrimSpace(id)

	if id == "" {
		return fmt.Errorf("%w: national id is required", ErrInvalidNationalID)
	}

	if len(id) > MaxNationalIDLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidNationalID, MaxNationalIDLength)
	}

	return nil
}

// ValidateLoanNumber validates the human-facing loan reference
func ValidateLoanNumber(number string) error {
	number = strings.TrimSpace(number)

	if number == "" {
		return fmt.Errorf("%w: loan number is required", ErrInvalidLoanNumber)
	}

	if len(number) > MaxLoanNumberLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidLoanNumber, MaxLoanNumberLength)
	}

	return nil
}

// ValidateAmount validates a loan or payment amount
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	minAmount, _ := decimal.NewFromString(MinLoanAmount)
	if amount.LessThan(minAmount) {
		return fmt.Errorf("%w: minimum amount is %s", ErrAmountTooSmall, MinLoanAmount)
	}

	maxAmount, _ := decimal.NewFromString(MaxLoanAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxLoanAmount)
	}

	return nil
}

// ValidateInterestRate validates a nominal annual percentage
func ValidateInterestRate(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return fmt.Errorf("%w: rate cannot be negative", ErrInvalidRate)
	}

	if rate.GreaterThan(decimal.NewFromInt(MaxInterestRate)) {
		return fmt.Errorf("%w: rate cannot exceed %d%%", ErrInvalidRate, MaxInterestRate)
	}

	return nil
}

// ValidateTermMonths validates the number of monthly installments
func ValidateTermMonths(term int) error {
	if term <= 0 {
		return fmt.Errorf("%w: term must be positive", ErrInvalidTerm)
	}

	if term > MaxTermMonths {
		return fmt.Errorf("%w: term cannot exceed %d months", ErrInvalidTerm, MaxTermMonths)
	}

	return nil
}

// ValidateEmail validates email format. Empty is allowed.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil
	}

	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}

	return nil
}

// ValidateClient validates a client before it is stored
func ValidateClient(c *Client) error {
	if err := ValidateNationalID(c.NationalID); err != nil {
		return err
	}
	if err := ValidateName(c.FirstName); err != nil {
		return err
	}
	if err := ValidateName(c.LastName); err != nil {
		return err
	}
	if err := ValidateEmail(c.Email); err != nil {
		return err
	}
	if c.MonthlyIncome != nil && c.MonthlyIncome.IsNegative() {
		return fmt.Errorf("%w: monthly income cannot be negative", ErrInvalidAmount)
	}
	if !c.Status.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidClientStatus, c.Status)
	}

	return nil
}

// ValidateLoan validates loan terms before origination
func ValidateLoan(l *Loan) error {
	if err := ValidateLoanNumber(l.LoanNumber); err != nil {
		return err
	}
	if err := ValidateAmount(l.Amount); err != nil {
		return err
	}
	if l.ApprovedAmount != nil {
		if err := ValidateAmount(*l.ApprovedAmount); err != nil {
			return err
		}
	}
	if err := ValidateInterestRate(l.InterestRate); err != nil {
		return err
	}
	if err := ValidateTermMonths(l.TermMonths); err != nil {
		return err
	}
	if !l.Method.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidMethod, string(l.Method))
	}
	if !l.Status.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidLoanStatus, l.Status)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 100
	const DefaultPageSize = 20

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
