package dto

import (
	"time"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
)

// ClientResponse represents a client in API responses.
type ClientResponse struct {
	BirthDate     *string   `json:"birth_date,omitempty"`
	MonthlyIncome *string   `json:"monthly_income,omitempty"`
	ID            string    `json:"id"`
	NationalID    string    `json:"national_id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	FullName      string    `json:"full_name"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	Address       string    `json:"address"`
	Occupation    string    `json:"occupation"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// ClientFromDomain converts domain client to response.
func ClientFromDomain(c *domain.Client) *ClientResponse {
	return &ClientResponse{
		BirthDate:     formatDatePtr(c.BirthDate),
		MonthlyIncome: moneyPtr(c.MonthlyIncome),
		ID:            c.ID,
		NationalID:    c.NationalID,
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		FullName:      c.FullName(),
		Phone:         c.Phone,
		Email:         c.Email,
		Address:       c.Address,
		Occupation:    c.Occupation,
		Status:        string(c.Status),
		CreatedAt:     c.CreatedAt,
	}
}

// ClientsFromDomain converts domain clients to responses.
func ClientsFromDomain(clients []*domain.Client) []*ClientResponse {
	result := make([]*ClientResponse, len(clients))
	for i, c := range clients {
		result[i] = ClientFromDomain(c)
	}
	return result
}

// ListClientsResponse is a page of clients.
type ListClientsResponse struct {
	Clients []*ClientResponse `json:"clients"`
	Total   int64             `json:"total"`
}

// LoanResponse represents a loan in API responses. Client and Schedule are
// only populated on single-loan reads.
type LoanResponse struct {
	ApprovedAmount   *string                `json:"approved_amount,omitempty"`
	DisbursementDate *string                `json:"disbursement_date,omitempty"`
	FirstPaymentDate *string                `json:"first_payment_date,omitempty"`
	Client           *ClientResponse        `json:"client,omitempty"`
	ID               string                 `json:"id"`
	ClientID         string                 `json:"client_id"`
	LoanNumber       string                 `json:"loan_number"`
	Amount           string                 `json:"amount"`
	InterestRate     string                 `json:"interest_rate"`
	Method           string                 `json:"method"`
	Purpose          string                 `json:"purpose"`
	Status           string                 `json:"status"`
	CreatedAt        time.Time              `json:"created_at"`
	Schedule         []*InstallmentResponse `json:"schedule,omitempty"`
	TermMonths       int                    `json:"term_months"`
}

// LoanFromDomain converts domain loan to response.
func LoanFromDomain(l *domain.Loan) *LoanResponse {
	resp := &LoanResponse{
		ApprovedAmount:   moneyPtr(l.ApprovedAmount),
		DisbursementDate: formatDatePtr(l.DisbursementDate),
		FirstPaymentDate: formatDatePtr(l.FirstPaymentDate),
		ID:               l.ID,
		ClientID:         l.ClientID,
		LoanNumber:       l.LoanNumber,
		Amount:           money(l.Amount),
		InterestRate:     l.InterestRate.String(),
		Method:           string(l.Method),
		Purpose:          l.Purpose,
		Status:           string(l.Status),
		CreatedAt:        l.CreatedAt,
		TermMonths:       l.TermMonths,
	}
	if l.Client != nil {
		resp.Client = ClientFromDomain(l.Client)
	}
	if len(l.Schedule) > 0 {
		resp.Schedule = InstallmentsFromDomain(l.Schedule)
	}
	return resp
}

// LoansFromDomain converts domain loans to responses.
func LoansFromDomain(loans []*domain.Loan) []*LoanResponse {
	result := make([]*LoanResponse, len(loans))
	for i, l := range loans {
		result[i] = LoanFromDomain(l)
	}
	return result
}

// ListLoansResponse is a page of loans.
type ListLoansResponse struct {
	Loans []*LoanResponse `json:"loans"`
	Total int64           `json:"total"`
}

// InstallmentResponse represents a stored schedule row.
type InstallmentResponse struct {
	PaidAt            *time.Time `json:"paid_at,omitempty"`
	ID                string     `json:"id"`
	LoanID            string     `json:"loan_id"`
	DueDate           string     `json:"due_date"`
	PrincipalAmount   string     `json:"principal_amount"`
	InterestAmount    string     `json:"interest_amount"`
	TotalAmount       string     `json:"total_amount"`
	RemainingBalance  string     `json:"remaining_balance"`
	Status            string     `json:"status"`
	InstallmentNumber int        `json:"installment_number"`
}

// InstallmentFromDomain converts a domain installment to response.
func InstallmentFromDomain(i *domain.Installment) *InstallmentResponse {
	return &InstallmentResponse{
		PaidAt:            i.PaidAt,
		ID:                i.ID,
		LoanID:            i.LoanID,
		DueDate:           formatDate(i.DueDate),
		PrincipalAmount:   money(i.Principal),
		InterestAmount:    money(i.Interest),
		TotalAmount:       money(i.Total),
		RemainingBalance:  money(i.RemainingBalance),
		Status:            string(i.Status),
		InstallmentNumber: i.Number,
	}
}

// InstallmentsFromDomain converts domain installments to responses.
func InstallmentsFromDomain(installments []*domain.Installment) []*InstallmentResponse {
	result := make([]*InstallmentResponse, len(installments))
	for i, inst := range installments {
		result[i] = InstallmentFromDomain(inst)
	}
	return result
}

// ScheduleResponse is the stored schedule of a loan.
type ScheduleResponse struct {
	LoanID   string                 `json:"loan_id"`
	Schedule []*InstallmentResponse `json:"schedule"`
}

// ScheduleRowResponse is one computed installment of a preview.
type ScheduleRowResponse struct {
	DueDate           string `json:"due_date"`
	PrincipalAmount   string `json:"principal_amount"`
	InterestAmount    string `json:"interest_amount"`
	TotalAmount       string `json:"total_amount"`
	RemainingBalance  string `json:"remaining_balance"`
	InstallmentNumber int    `json:"installment_number"`
}

// ScheduleRowsFromDomain converts engine rows to responses.
func ScheduleRowsFromDomain(rows []domain.AmortizationRow) []ScheduleRowResponse {
	result := make([]ScheduleRowResponse, len(rows))
	for i, row := range rows {
		result[i] = ScheduleRowResponse{
			DueDate:           formatDate(row.DueDate),
			PrincipalAmount:   money(row.PrincipalAmount),
			InterestAmount:    money(row.InterestAmount),
			TotalAmount:       money(row.TotalAmount),
			RemainingBalance:  money(row.RemainingBalance),
			InstallmentNumber: row.InstallmentNumber,
		}
	}
	return result
}

// ScheduleSummaryResponse totals a schedule.
type ScheduleSummaryResponse struct {
	TotalPrincipal string `json:"total_principal"`
	TotalInterest  string `json:"total_interest"`
	TotalPayments  string `json:"total_payments"`
	FirstDueDate   string `json:"first_due_date,omitempty"`
	LastDueDate    string `json:"last_due_date,omitempty"`
	Installments   int    `json:"installments"`
}

// ScheduleSummaryFromDomain converts a schedule summary to response.
func ScheduleSummaryFromDomain(s domain.ScheduleSummary) ScheduleSummaryResponse {
	resp := ScheduleSummaryResponse{
		TotalPrincipal: money(s.TotalPrincipal),
		TotalInterest:  money(s.TotalInterest),
		TotalPayments:  money(s.TotalPayments),
		Installments:   s.Installments,
	}
	if s.Installments > 0 {
		resp.FirstDueDate = formatDate(s.FirstDueDate)
		resp.LastDueDate = formatDate(s.LastDueDate)
	}
	return resp
}

// SchedulePreviewResponse is a computed, unpersisted schedule.
type SchedulePreviewResponse struct {
	Method   string                  `json:"method"`
	Summary  ScheduleSummaryResponse `json:"summary"`
	Schedule []ScheduleRowResponse   `json:"schedule"`
	Cached   bool                    `json:"cached"`
}

// SchedulePreviewFromUseCase converts a preview to response.
func SchedulePreviewFromUseCase(p *usecase.SchedulePreview) *SchedulePreviewResponse {
	return &SchedulePreviewResponse{
		Method:   string(p.Method),
		Summary:  ScheduleSummaryFromDomain(p.Summary),
		Schedule: ScheduleRowsFromDomain(p.Rows),
		Cached:   p.Cached,
	}
}

// PaymentResponse represents a payment in API responses.
type PaymentResponse struct {
	InstallmentID   *string   `json:"installment_id,omitempty"`
	ID              string    `json:"id"`
	LoanID          string    `json:"loan_id"`
	AmountPaid      string    `json:"amount_paid"`
	PaymentDate     string    `json:"payment_date"`
	Method          string    `json:"method"`
	ReferenceNumber string    `json:"reference_number,omitempty"`
	LateFee         string    `json:"late_fee"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// PaymentFromDomain converts domain payment to response.
func PaymentFromDomain(p *domain.Payment) *PaymentResponse {
	return &PaymentResponse{
		InstallmentID:   p.InstallmentID,
		ID:              p.ID,
		LoanID:          p.LoanID,
		AmountPaid:      money(p.AmountPaid),
		PaymentDate:     formatDate(p.PaymentDate),
		Method:          string(p.Method),
		ReferenceNumber: p.ReferenceNumber,
		LateFee:         money(p.LateFee),
		Notes:           p.Notes,
		CreatedAt:       p.CreatedAt,
	}
}

// PaymentsFromDomain converts domain payments to responses.
func PaymentsFromDomain(payments []*domain.Payment) []*PaymentResponse {
	result := make([]*PaymentResponse, len(payments))
	for i, p := range payments {
		result[i] = PaymentFromDomain(p)
	}
	return result
}

// ListPaymentsResponse is a list of payments.
type ListPaymentsResponse struct {
	Payments []*PaymentResponse `json:"payments"`
	Total    int64              `json:"total"`
}

// ActiveLoansResponse aggregates active loans.
type ActiveLoansResponse struct {
	Amount string `json:"amount"`
	Count  int64  `json:"count"`
}

// DashboardStatsResponse summarises the portfolio.
type DashboardStatsResponse struct {
	ActiveLoans    ActiveLoansResponse `json:"active_loans"`
	TotalCollected string              `json:"total_collected"`
	TotalClients   int64               `json:"total_clients"`
}

// DashboardStatsFromDomain converts dashboard stats to response.
func DashboardStatsFromDomain(s *domain.DashboardStats) *DashboardStatsResponse {
	return &DashboardStatsResponse{
		ActiveLoans: ActiveLoansResponse{
			Amount: money(s.ActiveLoansAmount),
			Count:  s.ActiveLoansCount,
		},
		TotalCollected: money(s.TotalCollected),
		TotalClients:   s.TotalClients,
	}
}

// MethodCountResponse is the number of loans using a method.
type MethodCountResponse struct {
	Method string `json:"method"`
	Count  int64  `json:"count"`
}

// MethodCountsFromDomain converts method counts to responses.
func MethodCountsFromDomain(counts []domain.MethodCount) []MethodCountResponse {
	result := make([]MethodCountResponse, len(counts))
	for i, c := range counts {
		result[i] = MethodCountResponse{Method: string(c.Method), Count: c.Count}
	}
	return result
}

// DisbursementResponse is the amount disbursed in a month.
type DisbursementResponse struct {
	Month  string `json:"month"`
	Amount string `json:"amount"`
}

// DisbursementsFromDomain converts monthly disbursements to responses.
func DisbursementsFromDomain(rows []domain.MonthlyDisbursement) []DisbursementResponse {
	result := make([]DisbursementResponse, len(rows))
	for i, r := range rows {
		result[i] = DisbursementResponse{Month: r.Month, Amount: money(r.Amount)}
	}
	return result
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
