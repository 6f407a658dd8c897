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

// UnitService defines the behavior needed by UnitHandler.
type UnitService interface {
	CreateUnit(ctx context.Context, input usecase.CreateUnitInput) (*domain.FinancedUnit, error)
	GetUnit(ctx context.Context, id string) (*domain.FinancedUnit, error)
	ListUnits(ctx context.Context, input usecase.ListUnitsInput) ([]*domain.FinancedUnit, error)
	UpdateCosts(ctx context.Context, input usecase.UpdateCostsInput) (*domain.FinancedUnit, error)
}

// UnitHandler handles stock unit HTTP requests.
type UnitHandler struct {
	unitUC UnitService
}

// NewUnitHandler creates a new UnitHandler.
func NewUnitHandler(unitUC UnitService) *UnitHandler {
	return &UnitHandler{unitUC: unitUC}
}

// Create registers a new stock unit.
func (h *UnitHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUnitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := dto.Validate(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, mapDomainError(err), "invalid request", err.Error())
		return
	}

	unit, err := h.unitUC.CreateUnit(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create unit", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.UnitFromDomain(unit))
}

// Get retrieves a unit by ID.
func (h *UnitHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing unit ID", "")
		return
	}

	unit, err := h.unitUC.GetUnit(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get unit", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.UnitFromDomain(unit))
}

// List lists stock units.
func (h *UnitHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 0)
	offset := parseIntQuery(r, "offset", 0)

	units, err := h.unitUC.ListUnits(r.Context(), usecase.ListUnitsInput{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list units", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListUnitsResponse{
		Units: dto.UnitsFromDomain(units),
		Total: int64(len(units)),
	})
}

// UpdateCosts replaces a unit's cost fields.
func (h *UnitHandler) UpdateCosts(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing unit ID", "")
		return
	}

	var req dto.UpdateCostsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	unit, err := h.unitUC.UpdateCosts(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update costs", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.UnitFromDomain(unit))
}
