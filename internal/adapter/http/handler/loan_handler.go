package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/goloan/internal/adapter/http/dto"
	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
)

// LoanService defines the behavior needed by LoanHandler.
type LoanService interface {
	CreateLoan(ctx context.Context, input usecase.CreateLoanInput) (*domain.Loan, error)
	GetLoan(ctx context.Context, id string) (*domain.Loan, error)
	GetSchedule(ctx context.Context, loanID string) ([]*domain.Installment, error)
	ListLoans(ctx context.Context, filter usecase.LoanFilter) ([]*domain.Loan, error)
	DeleteLoan(ctx context.Context, id string) error
	PreviewSchedule(ctx context.Context, input usecase.PreviewScheduleInput) (*usecase.SchedulePreview, error)
}

// LoanHandler handles loan and schedule HTTP requests.
type LoanHandler struct {
	loanUC LoanService
}

// NewLoanHandler creates a new LoanHandler.
func NewLoanHandler(loanUC LoanService) *LoanHandler {
	return &LoanHandler{loanUC: loanUC}
}

// Create originates a loan.
func (h *LoanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLoanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	loan, err := h.loanUC.CreateLoan(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, "failed to create loan", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.LoanFromDomain(loan))
}

// Get retrieves a loan with its client and schedule.
func (h *LoanHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing loan ID", "")
		return
	}

	loan, err := h.loanUC.GetLoan(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, "failed to get loan", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LoanFromDomain(loan))
}

// List lists loans, optionally filtered by client_id and status.
func (h *LoanHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	loans, err := h.loanUC.ListLoans(r.Context(), usecase.LoanFilter{
		ClientID: query.Get("client_id"),
		Status:   domain.LoanStatus(query.Get("status")),
		Limit:    parseIntQuery(r, "limit", 20),
		Offset:   parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, r, "failed to list loans", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListLoansResponse{
		Loans: dto.LoansFromDomain(loans),
		Total: int64(len(loans)),
	})
}

// Delete removes a loan and its schedule.
func (h *LoanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing loan ID", "")
		return
	}

	if err := h.loanUC.DeleteLoan(r.Context(), id); err != nil {
		writeDomainError(w, r, "failed to delete loan", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Schedule returns the stored schedule of a loan.
func (h *LoanHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing loan ID", "")
		return
	}

	installments, err := h.loanUC.GetSchedule(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, "failed to get schedule", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ScheduleResponse{
		LoanID:   id,
		Schedule: dto.InstallmentsFromDomain(installments),
	})
}

// Preview computes a schedule without storing anything.
func (h *LoanHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req dto.PreviewScheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	preview, err := h.loanUC.PreviewSchedule(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, "failed to compute schedule", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SchedulePreviewFromUseCase(preview))
}
