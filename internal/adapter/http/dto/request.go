package dto

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
)

// CreateClientRequest represents a request to register a client.
type CreateClientRequest struct {
	BirthDate     *Date   `json:"birth_date,omitempty"`
	MonthlyIncome *string `json:"monthly_income,omitempty"`
	NationalID    string  `json:"national_id"`
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	Phone         string  `json:"phone,omitempty"`
	Email         string  `json:"email,omitempty"`
	Address       string  `json:"address,omitempty"`
	Occupation    string  `json:"occupation,omitempty"`
	Status        string  `json:"status,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateClientRequest) ToUseCaseInput() (usecase.CreateClientInput, error) {
	income, err := parseAmountPtr("monthly_income", r.MonthlyIncome)
	if err != nil {
		return usecase.CreateClientInput{}, err
	}

	return usecase.CreateClientInput{
		BirthDate:     r.BirthDate.TimePtr(),
		MonthlyIncome: income,
		NationalID:    r.NationalID,
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Phone:         r.Phone,
		Email:         r.Email,
		Address:       r.Address,
		Occupation:    r.Occupation,
		Status:        domain.ClientStatus(r.Status),
	}, nil
}

// UpdateClientRequest represents a partial client update. Omitted fields are
// left unchanged.
type UpdateClientRequest struct {
	BirthDate     *Date   `json:"birth_date,omitempty"`
	MonthlyIncome *string `json:"monthly_income,omitempty"`
	NationalID    *string `json:"national_id,omitempty"`
	FirstName     *string `json:"first_name,omitempty"`
	LastName      *string `json:"last_name,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Email         *string `json:"email,omitempty"`
	Address       *string `json:"address,omitempty"`
	Occupation    *string `json:"occupation,omitempty"`
	Status        *string `json:"status,omitempty"`
}

// ToUseCaseInput converts to use case input for the client with the given ID.
func (r *UpdateClientRequest) ToUseCaseInput(id string) (usecase.UpdateClientInput, error) {
	income, err := parseAmountPtr("monthly_income", r.MonthlyIncome)
	if err != nil {
		return usecase.UpdateClientInput{}, err
	}

	input := usecase.UpdateClientInput{
		ID:            id,
		BirthDate:     r.BirthDate.TimePtr(),
		MonthlyIncome: income,
		NationalID:    r.NationalID,
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Phone:         r.Phone,
		Email:         r.Email,
		Address:       r.Address,
		Occupation:    r.Occupation,
	}
	if r.Status != nil {
		status := domain.ClientStatus(*r.Status)
		input.Status = &status
	}

	return input, nil
}

// CreateLoanRequest represents a request to originate a loan.
type CreateLoanRequest struct {
	ApprovedAmount   *string `json:"approved_amount,omitempty"`
	DisbursementDate *Date   `json:"disbursement_date,omitempty"`
	FirstPaymentDate *Date   `json:"first_payment_date,omitempty"`
	ClientID         string  `json:"client_id"`
	LoanNumber       string  `json:"loan_number"`
	Amount           string  `json:"amount"`
	InterestRate     string  `json:"interest_rate"`
	Method           string  `json:"method"`
	Purpose          string  `json:"purpose,omitempty"`
	Status           string  `json:"status,omitempty"`
	TermMonths       int     `json:"term_months"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateLoanRequest) ToUseCaseInput() (usecase.CreateLoanInput, error) {
	amount, err := parseAmount("amount", r.Amount)
	if err != nil {
		return usecase.CreateLoanInput{}, err
	}
	rate, err := parseAmount("interest_rate", r.InterestRate)
	if err != nil {
		return usecase.CreateLoanInput{}, err
	}
	approved, err := parseAmountPtr("approved_amount", r.ApprovedAmount)
	if err != nil {
		return usecase.CreateLoanInput{}, err
	}

	return usecase.CreateLoanInput{
		ApprovedAmount:   approved,
		DisbursementDate: r.DisbursementDate.TimePtr(),
		FirstPaymentDate: r.FirstPaymentDate.TimePtr(),
		ClientID:         r.ClientID,
		LoanNumber:       r.LoanNumber,
		Purpose:          r.Purpose,
		Method:           domain.Method(strings.ToLower(r.Method)),
		Status:           domain.LoanStatus(r.Status),
		Amount:           amount,
		InterestRate:     rate,
		TermMonths:       r.TermMonths,
	}, nil
}

// PreviewScheduleRequest represents an ad-hoc schedule computation.
type PreviewScheduleRequest struct {
	StartDate    Date   `json:"start_date"`
	Amount       string `json:"amount"`
	InterestRate string `json:"interest_rate"`
	Method       string `json:"method"`
	TermMonths   int    `json:"term_months"`
}

// ToUseCaseInput converts to use case input.
func (r *PreviewScheduleRequest) ToUseCaseInput() (usecase.PreviewScheduleInput, error) {
	if r.StartDate.IsZero() {
		return usecase.PreviewScheduleInput{}, errors.New("start_date is required")
	}
	amount, err := parseAmount("amount", r.Amount)
	if err != nil {
		return usecase.PreviewScheduleInput{}, err
	}
	rate, err := parseAmount("interest_rate", r.InterestRate)
	if err != nil {
		return usecase.PreviewScheduleInput{}, err
	}

	return usecase.PreviewScheduleInput{
		StartDate:    r.StartDate.Time,
		Method:       domain.Method(strings.ToLower(r.Method)),
		Amount:       amount,
		InterestRate: rate,
		TermMonths:   r.TermMonths,
	}, nil
}

// RecordPaymentRequest represents a payment against a loan.
type RecordPaymentRequest struct {
	InstallmentID   *string `json:"installment_id,omitempty"`
	PaymentDate     *Date   `json:"payment_date,omitempty"`
	LateFee         *string `json:"late_fee,omitempty"`
	LoanID          string  `json:"loan_id"`
	AmountPaid      string  `json:"amount_paid"`
	Method          string  `json:"method,omitempty"`
	ReferenceNumber string  `json:"reference_number,omitempty"`
	Notes           string  `json:"notes,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordPaymentRequest) ToUseCaseInput() (usecase.RecordPaymentInput, error) {
	amount, err := parseAmount("amount_paid", r.AmountPaid)
	if err != nil {
		return usecase.RecordPaymentInput{}, err
	}
	lateFee, err := parseAmountPtr("late_fee", r.LateFee)
	if err != nil {
		return usecase.RecordPaymentInput{}, err
	}
	fee := decimal.Zero
	if lateFee != nil {
		fee = *lateFee
	}

	installmentID := r.InstallmentID
	if installmentID != nil && *installmentID == "" {
		installmentID = nil
	}

	return usecase.RecordPaymentInput{
		InstallmentID:   installmentID,
		PaymentDate:     r.PaymentDate.TimePtr(),
		LoanID:          r.LoanID,
		Method:          domain.PaymentMethod(r.Method),
		ReferenceNumber: r.ReferenceNumber,
		Notes:           r.Notes,
		AmountPaid:      amount,
		LateFee:         fee,
	}, nil
}
