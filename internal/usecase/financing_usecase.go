package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/motorlot/financing/internal/domain"
	"github.com/motorlot/financing/internal/infrastructure/metrics"
)

// noteLockContention counts lock acquisition failures on the contention
// metric; other acquire errors pass through uncounted.
func noteLockContention(m *metrics.Metrics, err error) {
	if m != nil && errors.Is(err, domain.ErrLockContention) {
		m.LockContention.Inc()
	}
}

// FinancingUseCase maintains the interest period ledger of a financed unit:
// one ordered, non-overlapping sequence of rate periods with at most one
// open period. Every mutation runs under the per-unit lock and a single
// database transaction.
type FinancingUseCase struct {
	txManager  TransactionManager
	unitRepo   UnitRepository
	periodRepo PeriodRepository
	outboxRepo OutboxRepository
	auditRepo  AuditRepository
	idGen      IDGenerator
	locker     UnitLocker
	cache      Cache
	metrics    *metrics.Metrics
}

// NewFinancingUseCase creates a new FinancingUseCase.
func NewFinancingUseCase(
	txManager TransactionManager,
	unitRepo UnitRepository,
	periodRepo PeriodRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	locker UnitLocker,
	cache Cache,
	metrics *metrics.Metrics,
) *FinancingUseCase {
	return &FinancingUseCase{
		txManager:  txManager,
		unitRepo:   unitRepo,
		periodRepo: periodRepo,
		outboxRepo: outboxRepo,
		auditRepo:  auditRepo,
		idGen:      idGen,
		locker:     locker,
		cache:      cache,
		metrics:    metrics,
	}
}

// InitializeInput represents input for opening the first interest period.
type InitializeInput struct {
	UnitID         string
	AnnualRate     decimal.Decimal
	PrincipalBasis *domain.PrincipalBasis
	StartDate      *time.Time
	Note           string
}

// Initialize opens the first interest period of a financed unit. The
// period's principal is snapshotted from the unit's costs at call time.
func (uc *FinancingUseCase) Initialize(ctx context.Context, input InitializeInput) (*domain.InterestPeriod, error) {
	if err := domain.ValidateRate(input.AnnualRate); err != nil {
		return nil, err
	}
	if input.PrincipalBasis != nil && !input.PrincipalBasis.Valid() {
		return nil, domain.ErrInvalidBasis
	}

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

	if !unit.HasFinancing {
		return nil, domain.ErrNoDebt
	}

	count, err := uc.periodRepo.CountByUnit(txCtx, tx, unit.ID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, domain.ErrAlreadyInitialized
	}

	start := domain.DateOnly(unit.InterestStartDate)
	if input.StartDate != nil {
		start = domain.DateOnly(*input.StartDate)
		if start.Before(domain.DateOnly(unit.InterestStartDate)) {
			return nil, domain.ErrInvalidDate
		}
	}

	basis := unit.PrincipalBasis
	if input.PrincipalBasis != nil {
		basis = *input.PrincipalBasis
	}

	now := time.Now().UTC()
	period := &domain.InterestPeriod{
		ID:              uc.idGen.Generate(),
		UnitID:          unit.ID,
		StartDate:       start,
		AnnualRate:      input.AnnualRate,
		PrincipalBasis:  basis,
		PrincipalAmount: unit.BasisAmount(basis),
		Note:            input.Note,
		CreatedAt:       now,
	}

	if err := uc.periodRepo.Create(txCtx, tx, period); err != nil {
		return nil, err
	}

	unit.PrincipalBasis = basis
	if err := uc.unitRepo.UpdateFinancingState(txCtx, tx, unit); err != nil {
		return nil, err
	}

	event := uc.newEvent(unit.ID, domain.EventTypeFinancingInitialized, map[string]any{
		"unit_id":          unit.ID,
		"period_id":        period.ID,
		"annual_rate":      period.AnnualRate.String(),
		"principal_basis":  string(period.PrincipalBasis),
		"principal_amount": period.PrincipalAmount.String(),
		"start_date":       start.Format(time.DateOnly),
	})
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := uc.audit(txCtx, tx, ctx, domain.AuditActionFinancingInit, unit.ID, period); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.invalidateSummary(ctx, unit.ID)
	if uc.metrics != nil {
		uc.metrics.FinancingInitialized.Inc()
	}

	return period, nil
}

// ChangeRateInput represents input for a rate or basis change.
type ChangeRateInput struct {
	UnitID        string
	NewRate       decimal.Decimal
	NewBasis      *domain.PrincipalBasis
	EffectiveDate *time.Time
	Note          string
}

// ChangeRate closes the open period at the effective date and opens a new
// one at the new rate with a freshly snapshotted principal.
func (uc *FinancingUseCase) ChangeRate(ctx context.Context, input ChangeRateInput) (*domain.InterestPeriod, error) {
	if err := domain.ValidateRate(input.NewRate); err != nil {
		return nil, err
	}
	if input.NewBasis != nil && !input.NewBasis.Valid() {
		return nil, domain.ErrInvalidBasis
	}

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

	if unit.PaidOffAt != nil {
		return nil, domain.ErrAlreadyPaidOff
	}

	open, err := uc.periodRepo.GetOpenForUpdate(txCtx, tx, unit.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	effective := domain.DateOnly(now)
	if input.EffectiveDate != nil {
		effective = domain.DateOnly(*input.EffectiveDate)
	}

	if err := open.Close(effective); err != nil {
		return nil, err
	}
	if err := uc.periodRepo.Close(txCtx, tx, open); err != nil {
		return nil, err
	}

	basis := unit.PrincipalBasis
	if input.NewBasis != nil {
		basis = *input.NewBasis
	}

	next := &domain.InterestPeriod{
		ID:              uc.idGen.Generate(),
		UnitID:          unit.ID,
		StartDate:       effective,
		AnnualRate:      input.NewRate,
		PrincipalBasis:  basis,
		PrincipalAmount: unit.BasisAmount(basis),
		Note:            input.Note,
		CreatedAt:       now,
	}

	if err := uc.periodRepo.Create(txCtx, tx, next); err != nil {
		return nil, err
	}

	unit.PrincipalBasis = basis
	if err := uc.unitRepo.UpdateFinancingState(txCtx, tx, unit); err != nil {
		return nil, err
	}

	event := uc.newEvent(unit.ID, domain.EventTypeRateChanged, map[string]any{
		"unit_id":          unit.ID,
		"closed_period_id": open.ID,
		"new_period_id":    next.ID,
		"new_rate":         next.AnnualRate.String(),
		"principal_basis":  string(next.PrincipalBasis),
		"effective_date":   effective.Format(time.DateOnly),
		"accrued_interest": open.AccruedInterest.String(),
	})
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := uc.audit(txCtx, tx, ctx, domain.AuditActionRateChange, unit.ID, next); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.invalidateSummary(ctx, unit.ID)
	if uc.metrics != nil {
		uc.metrics.RateChanges.Inc()
	}

	return next, nil
}

// StopInput represents input for halting accrual.
type StopInput struct {
	UnitID   string
	StopDate *time.Time
	Note     string
}

// Stop closes the open period and halts accrual. No new period opens; the
// debt keeps its outstanding interest but stops growing.
func (uc *FinancingUseCase) Stop(ctx context.Context, input StopInput) (*domain.InterestPeriod, error) {
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

	if unit.PaidOffAt != nil {
		return nil, domain.ErrAlreadyPaidOff
	}

	open, err := uc.periodRepo.GetOpenForUpdate(txCtx, tx, unit.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	stopDate := domain.DateOnly(now)
	if input.StopDate != nil {
		stopDate = domain.DateOnly(*input.StopDate)
	}

	if err := open.Close(stopDate); err != nil {
		return nil, err
	}
	if err := uc.periodRepo.Close(txCtx, tx, open); err != nil {
		return nil, err
	}

	unit.AccrualHalted = true
	unit.HaltedAt = &now
	if err := uc.unitRepo.UpdateFinancingState(txCtx, tx, unit); err != nil {
		return nil, err
	}

	event := uc.newEvent(unit.ID, domain.EventTypeAccrualStopped, map[string]any{
		"unit_id":          unit.ID,
		"period_id":        open.ID,
		"stop_date":        stopDate.Format(time.DateOnly),
		"accrued_interest": open.AccruedInterest.String(),
	})
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := uc.audit(txCtx, tx, ctx, domain.AuditActionAccrualStop, unit.ID, open); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.invalidateSummary(ctx, unit.ID)
	if uc.metrics != nil {
		uc.metrics.AccrualStops.Inc()
	}

	return open, nil
}

// ResumeInput represents input for resuming accrual after a halt.
type ResumeInput struct {
	UnitID         string
	AnnualRate     decimal.Decimal
	PrincipalBasis *domain.PrincipalBasis
	ResumeDate     *time.Time
	Note           string
}

// Resume clears the halt flag and opens a new period with a fresh principal
// snapshot. The halted interval stays a real gap: no period covers it.
func (uc *FinancingUseCase) Resume(ctx context.Context, input ResumeInput) (*domain.InterestPeriod, error) {
	if err := domain.ValidateRate(input.AnnualRate); err != nil {
		return nil, err
	}
	if input.PrincipalBasis != nil && !input.PrincipalBasis.Valid() {
		return nil, domain.ErrInvalidBasis
	}

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

	if unit.PaidOffAt != nil {
		return nil, domain.ErrAlreadyPaidOff
	}
	if !unit.AccrualHalted {
		return nil, domain.ErrAccrualNotHalted
	}

	now := time.Now().UTC()
	resumeDate := domain.DateOnly(now)
	if input.ResumeDate != nil {
		resumeDate = domain.DateOnly(*input.ResumeDate)
	}

	periods, err := uc.periodRepo.ListByUnitTx(txCtx, tx, unit.ID)
	if err != nil {
		return nil, err
	}
	if n := len(periods); n > 0 {
		last := periods[n-1]
		if last.EndDate != nil && resumeDate.Before(*last.EndDate) {
			return nil, domain.ErrInvalidDate
		}
	}

	basis := unit.PrincipalBasis
	if input.PrincipalBasis != nil {
		basis = *input.PrincipalBasis
	}

	period := &domain.InterestPeriod{
		ID:              uc.idGen.Generate(),
		UnitID:          unit.ID,
		StartDate:       resumeDate,
		AnnualRate:      input.AnnualRate,
		PrincipalBasis:  basis,
		PrincipalAmount: unit.BasisAmount(basis),
		Note:            input.Note,
		CreatedAt:       now,
	}

	if err := uc.periodRepo.Create(txCtx, tx, period); err != nil {
		return nil, err
	}

	unit.AccrualHalted = false
	unit.HaltedAt = nil
	unit.PrincipalBasis = basis
	if err := uc.unitRepo.UpdateFinancingState(txCtx, tx, unit); err != nil {
		return nil, err
	}

	event := uc.newEvent(unit.ID, domain.EventTypeAccrualResumed, map[string]any{
		"unit_id":          unit.ID,
		"period_id":        period.ID,
		"annual_rate":      period.AnnualRate.String(),
		"principal_basis":  string(period.PrincipalBasis),
		"principal_amount": period.PrincipalAmount.String(),
		"resume_date":      resumeDate.Format(time.DateOnly),
	})
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := uc.audit(txCtx, tx, ctx, domain.AuditActionAccrualResume, unit.ID, period); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.invalidateSummary(ctx, unit.ID)
	if uc.metrics != nil {
		uc.metrics.AccrualResumes.Inc()
	}

	return period, nil
}

// ListPeriods returns the unit's ordered period history.
func (uc *FinancingUseCase) ListPeriods(ctx context.Context, unitID string) ([]*domain.InterestPeriod, error) {
	if _, err := uc.unitRepo.GetByID(ctx, unitID); err != nil {
		return nil, err
	}

	return uc.periodRepo.ListByUnit(ctx, unitID)
}

func (uc *FinancingUseCase) newEvent(unitID, eventType string, payload map[string]any) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   unitID,
		AggregateType: domain.AggregateTypeUnit,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     time.Now().UTC(),
		Published:     false,
	}
}

func (uc *FinancingUseCase) audit(txCtx context.Context, tx Transaction, ctx context.Context, action domain.AuditAction, unitID string, state any) error {
	if uc.auditRepo == nil {
		return nil
	}

	log := &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		UserID:       userIDFromContext(ctx),
		Action:       string(action),
		ResourceType: "unit",
		ResourceID:   unitID,
		AfterState:   domain.MarshalState(state),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	}

	return uc.auditRepo.CreateTx(txCtx, tx, log)
}

func (uc *FinancingUseCase) invalidateSummary(ctx context.Context, unitID string) {
	if uc.cache == nil {
		return
	}

	_ = uc.cache.Delete(ctx, summaryCacheKey(unitID))
}
