package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/motorlot/financing/internal/domain"
	"github.com/motorlot/financing/internal/infrastructure/metrics"
)

// UnitUseCase covers the minimal stock-management surface the engine needs
// in the same service: creating units and maintaining their cost fields.
// Cost updates never touch existing period snapshots.
type UnitUseCase struct {
	txManager TransactionManager
	unitRepo  UnitRepository
	auditRepo AuditRepository
	idGen     IDGenerator
	locker    UnitLocker
	cache     Cache
	metrics   *metrics.Metrics
}

// NewUnitUseCase creates a new UnitUseCase.
func NewUnitUseCase(
	txManager TransactionManager,
	unitRepo UnitRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	locker UnitLocker,
	cache Cache,
	metrics *metrics.Metrics,
) *UnitUseCase {
	return &UnitUseCase{
		txManager: txManager,
		unitRepo:  unitRepo,
		auditRepo: auditRepo,
		idGen:     idGen,
		locker:    locker,
		cache:     cache,
		metrics:   metrics,
	}
}

// CreateUnitInput represents input for creating a stock unit.
type CreateUnitInput struct {
	StockNumber       string
	VIN               string
	Model             string
	BaseCost          decimal.Decimal
	TransportCost     decimal.Decimal
	AccessoryCost     decimal.Decimal
	OtherCosts        decimal.Decimal
	PrincipalBasis    domain.PrincipalBasis
	InterestStartDate time.Time
	HasFinancing      bool
}

// CreateUnit registers a stock unit.
func (uc *UnitUseCase) CreateUnit(ctx context.Context, input CreateUnitInput) (*domain.FinancedUnit, error) {
	now := time.Now().UTC()
	unit := &domain.FinancedUnit{
		ID:                uc.idGen.Generate(),
		StockNumber:       input.StockNumber,
		VIN:               input.VIN,
		Model:             input.Model,
		BaseCost:          input.BaseCost,
		TransportCost:     input.TransportCost,
		AccessoryCost:     input.AccessoryCost,
		OtherCosts:        input.OtherCosts,
		PrincipalBasis:    input.PrincipalBasis,
		InterestStartDate: domain.DateOnly(input.InterestStartDate),
		HasFinancing:      input.HasFinancing,
		PaidInterest:      decimal.Zero,
		PaidPrincipal:     decimal.Zero,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := unit.Validate(); err != nil {
		return nil, err
	}

	if err := uc.unitRepo.Create(ctx, unit); err != nil {
		return nil, err
	}

	if uc.auditRepo != nil {
		log := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			UserID:       userIDFromContext(ctx),
			Action:       string(domain.AuditActionUnitCreate),
			ResourceType: "unit",
			ResourceID:   unit.ID,
			AfterState:   domain.MarshalState(unit),
			Status:       string(domain.AuditStatusSuccess),
			CreatedAt:    now,
		}
		_ = uc.auditRepo.Create(ctx, log)
	}

	if uc.metrics != nil {
		uc.metrics.UnitsCreated.Inc()
	}

	return unit, nil
}

// GetUnit retrieves a unit by ID.
func (uc *UnitUseCase) GetUnit(ctx context.Context, id string) (*domain.FinancedUnit, error) {
	return uc.unitRepo.GetByID(ctx, id)
}

// ListUnitsInput represents input for listing units.
type ListUnitsInput struct {
	Limit  int
	Offset int
}

// ListUnits lists stock units with pagination.
func (uc *UnitUseCase) ListUnits(ctx context.Context, input ListUnitsInput) ([]*domain.FinancedUnit, error) {
	if input.Limit <= 0 {
		input.Limit = DefaultPageSize
	}
	if input.Limit > MaxPageSize {
		input.Limit = MaxPageSize
	}

	return uc.unitRepo.List(ctx, input.Limit, input.Offset)
}

// UpdateCostsInput represents input for updating a unit's cost fields.
type UpdateCostsInput struct {
	UnitID        string
	BaseCost      decimal.Decimal
	TransportCost decimal.Decimal
	AccessoryCost decimal.Decimal
	OtherCosts    decimal.Decimal
}

// UpdateCosts replaces the unit's cost fields. Open and closed periods keep
// their principal snapshots; the new costs only matter for the next snapshot.
func (uc *UnitUseCase) UpdateCosts(ctx context.Context, input UpdateCostsInput) (*domain.FinancedUnit, error) {
	release, err := uc.locker.Acquire(ctx, input.UnitID)
	if err != nil {
		noteLockContention(uc.metrics, err)
		return nil, err
	}
	defer release()

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	unit, err := uc.unitRepo.GetByIDForUpdate(txCtx, tx, input.UnitID)
	if err != nil {
		return nil, err
	}

	before := domain.MarshalState(unit)

	unit.BaseCost = input.BaseCost
	unit.TransportCost = input.TransportCost
	unit.AccessoryCost = input.AccessoryCost
	unit.OtherCosts = input.OtherCosts

	if err := unit.Validate(); err != nil {
		return nil, err
	}

	if err := uc.unitRepo.UpdateCosts(txCtx, tx, unit); err != nil {
		return nil, err
	}

	if uc.auditRepo != nil {
		log := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			UserID:       userIDFromContext(ctx),
			Action:       string(domain.AuditActionUnitUpdateCosts),
			ResourceType: "unit",
			ResourceID:   unit.ID,
			BeforeState:  before,
			AfterState:   domain.MarshalState(unit),
			Status:       string(domain.AuditStatusSuccess),
			CreatedAt:    time.Now().UTC(),
		}
		if err := uc.auditRepo.CreateTx(txCtx, tx, log); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.cache != nil {
		_ = uc.cache.Delete(ctx, summaryCacheKey(unit.ID))
	}

	return unit, nil
}
