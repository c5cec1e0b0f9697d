package handler

import (
	"context"
	"net/http"

	"github.com/iho/goloan/internal/adapter/http/dto"
	"github.com/iho/goloan/internal/domain"
)

// DashboardService defines the behavior needed by DashboardHandler.
type DashboardService interface {
	Stats(ctx context.Context) (*domain.DashboardStats, error)
	LoanMethods(ctx context.Context) ([]domain.MethodCount, error)
	Disbursements(ctx context.Context) ([]domain.MonthlyDisbursement, error)
}

// DashboardHandler serves portfolio aggregates.
type DashboardHandler struct {
	dashboardUC DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardUC DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardUC: dashboardUC}
}

// Stats returns active loan totals, client count and amount collected.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboardUC.Stats(r.Context())
	if err != nil {
		writeDomainError(w, r, "failed to load dashboard stats", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DashboardStatsFromDomain(stats))
}

// LoanMethods returns the number of loans per amortization method.
func (h *DashboardHandler) LoanMethods(w http.ResponseWriter, r *http.Request) {
	counts, err := h.dashboardUC.LoanMethods(r.Context())
	if err != nil {
		writeDomainError(w, r, "failed to load loan methods", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MethodCountsFromDomain(counts))
}

// Disbursements returns the amount disbursed per month.
func (h *DashboardHandler) Disbursements(w http.ResponseWriter, r *http.Request) {
	rows, err := h.dashboardUC.Disbursements(r.Context())
	if err != nil {
		writeDomainError(w, r, "failed to load disbursements", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DisbursementsFromDomain(rows))
}
