package domain

import "time"

// Event types
const (
	EventTypeLoanCreated     = "loan.created"
	EventTypeLoanDeleted     = "loan.deleted"
	EventTypePaymentRecorded = "payment.recorded"
)

// Aggregate types
const (
	AggregateTypeLoan    = "loan"
	AggregateTypePayment = "payment"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// LoanCreatedEvent payload
type LoanCreatedEvent struct {
	LoanID       string `json:"loan_id"`
	ClientID     string `json:"client_id"`
	LoanNumber   string `json:"loan_number"`
	Principal    string `json:"principal"`
	Method       string `json:"method"`
	Status       string `json:"status"`
	Installments int    `json:"installments"`
}

// LoanDeletedEvent payload
type LoanDeletedEvent struct {
	LoanID string `json:"loan_id"`
}

// PaymentRecordedEvent payload
type PaymentRecordedEvent struct {
	PaymentID     string `json:"payment_id"`
	LoanID        string `json:"loan_id"`
	InstallmentID string `json:"installment_id,omitempty"`
	AmountPaid    string `json:"amount_paid"`
	Method        string `json:"method"`
}

// ToPayload flattens the event for the outbox payload column.
func (e LoanCreatedEvent) ToPayload() map[string]any {
	return map[string]any{
		"loan_id":      e.LoanID,
		"client_id":    e.ClientID,
		"loan_number":  e.LoanNumber,
		"principal":    e.Principal,
		"method":       e.Method,
		"status":       e.Status,
		"installments": e.Installments,
	}
}

// ToPayload flattens the event for the outbox payload column.
func (e LoanDeletedEvent) ToPayload() map[string]any {
	return map[string]any{"loan_id": e.LoanID}
}

// ToPayload flattens the event for the outbox payload column.
func (e PaymentRecordedEvent) ToPayload() map[string]any {
	payload := map[string]any{
		"payment_id":  e.PaymentID,
		"loan_id":     e.LoanID,
		"amount_paid": e.AmountPaid,
		"method":      e.Method,
	}
	if e.InstallmentID != "" {
		payload["installment_id"] = e.InstallmentID
	}
	return payload
}
