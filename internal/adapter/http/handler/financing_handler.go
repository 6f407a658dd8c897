package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/motorlot/financing/internal/adapter/http/dto"
	"github.com/motorlot/financing/internal/domain"
	"github.com/motorlot/financing/internal/usecase"
)

// FinancingService defines the behavior needed by FinancingHandler.
type FinancingService interface {
	Initialize(ctx context.Context, input usecase.InitializeInput) (*domain.InterestPeriod, error)
	ChangeRate(ctx context.Context, input usecase.ChangeRateInput) (*domain.InterestPeriod, error)
	Stop(ctx context.Context, input usecase.StopInput) (*domain.InterestPeriod, error)
	Resume(ctx context.Context, input usecase.ResumeInput) (*domain.InterestPeriod, error)
	ListPeriods(ctx context.Context, unitID string) ([]*domain.InterestPeriod, error)
}

// ConsistencyService defines the behavior needed for the consistency sweep.
type ConsistencyService interface {
	Check(ctx context.Context) (*usecase.ConsistencyReport, error)
}

// FinancingHandler handles interest period HTTP requests.
type FinancingHandler struct {
	financingUC   FinancingService
	consistencyUC ConsistencyService
}

// NewFinancingHandler creates a new FinancingHandler.
func NewFinancingHandler(financingUC FinancingService, consistencyUC ConsistencyService) *FinancingHandler {
	return &FinancingHandler{
		financingUC:   financingUC,
		consistencyUC: consistencyUC,
	}
}

// Initialize opens a unit's first interest period.
func (h *FinancingHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.InitializeFinancingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := dto.Validate(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(id)
	if err != nil {
		writeError(w, mapDomainError(err), "invalid request", err.Error())
		return
	}

	period, err := h.financingUC.Initialize(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to initialize financing", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.PeriodFromDomain(period))
}

// ChangeRate closes the open period and opens one at the new rate.
func (h *FinancingHandler) ChangeRate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.ChangeRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := dto.Validate(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(id)
	if err != nil {
		writeError(w, mapDomainError(err), "invalid request", err.Error())
		return
	}

	period, err := h.financingUC.ChangeRate(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to change rate", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.PeriodFromDomain(period))
}

// Stop halts interest accrual.
func (h *FinancingHandler) Stop(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.StopAccrualRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := dto.Validate(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(id)
	if err != nil {
		writeError(w, mapDomainError(err), "invalid request", err.Error())
		return
	}

	period, err := h.financingUC.Stop(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to stop accrual", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PeriodFromDomain(period))
}

// Resume restarts accrual after a halt.
func (h *FinancingHandler) Resume(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.ResumeAccrualRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := dto.Validate(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(id)
	if err != nil {
		writeError(w, mapDomainError(err), "invalid request", err.Error())
		return
	}

	period, err := h.financingUC.Resume(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to resume accrual", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.PeriodFromDomain(period))
}

// ListPeriods returns a unit's ordered period history.
func (h *FinancingHandler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	periods, err := h.financingUC.ListPeriods(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list periods", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListPeriodsResponse{
		Periods: dto.PeriodsFromDomain(periods),
		Total:   int64(len(periods)),
	})
}

// Consistency sweeps every financed unit and reports invariant violations.
func (h *FinancingHandler) Consistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.consistencyUC.Check(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "consistency check failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, report)
}
