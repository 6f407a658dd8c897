package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/motorlot/financing/internal/domain"
)

// SummaryUseCase projects the externally consumed debt summary. It never
// mutates state; a single read transaction gives it a consistent snapshot
// of the unit row and its periods, so it does not take the per-unit lock.
type SummaryUseCase struct {
	txManager  TransactionManager
	unitRepo   UnitRepository
	periodRepo PeriodRepository
	cache      Cache
	cacheTTL   time.Duration
}

// NewSummaryUseCase creates a new SummaryUseCase. A non-positive cacheTTL
// falls back to SummaryCacheTTL.
func NewSummaryUseCase(
	txManager TransactionManager,
	unitRepo UnitRepository,
	periodRepo PeriodRepository,
	cache Cache,
	cacheTTL time.Duration,
) *SummaryUseCase {
	if cacheTTL <= 0 {
		cacheTTL = SummaryCacheTTL
	}

	return &SummaryUseCase{
		txManager:  txManager,
		unitRepo:   unitRepo,
		periodRepo: periodRepo,
		cache:      cache,
		cacheTTL:   cacheTTL,
	}
}

// Summarize computes the debt summary as of the given date. A nil asOf
// means "now"; only the now-summary is served from cache, a historical or
// future asOf (payoff quote) always recomputes.
func (uc *SummaryUseCase) Summarize(ctx context.Context, unitID string, asOf *time.Time) (*domain.DebtSummary, error) {
	useCache := asOf == nil && uc.cache != nil
	if useCache {
		if data, err := uc.cache.Get(ctx, summaryCacheKey(unitID)); err == nil && data != nil {
			var cached domain.DebtSummary
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	at := time.Now().UTC()
	if asOf != nil {
		at = *asOf
	}
	at = domain.DateOnly(at)

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	unit, err := uc.unitRepo.GetByIDTx(txCtx, tx, unitID)
	if err != nil {
		return nil, err
	}

	periods, err := uc.periodRepo.ListByUnitTx(txCtx, tx, unitID)
	if err != nil {
		return nil, err
	}

	// Read-only transaction; nothing to commit.
	_ = tx.Rollback(txCtx)

	summary := projectSummary(unit, periods, at)

	if useCache {
		if data, err := json.Marshal(summary); err == nil {
			_ = uc.cache.Set(ctx, summaryCacheKey(unitID), data, uc.cacheTTL)
		}
	}

	return summary, nil
}

func summaryCacheKey(unitID string) string {
	return "debt-summary:" + unitID
}

// openPeriod returns the unit's open period, or nil.
func openPeriod(periods []*domain.InterestPeriod) *domain.InterestPeriod {
	for _, p := range periods {
		if p.IsOpen() {
			return p
		}
	}

	return nil
}

// lifetimeAccrued sums closed-period interest plus the open period's
// projection as of the given date.
func lifetimeAccrued(periods []*domain.InterestPeriod, asOf time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, p := range periods {
		total = total.Add(p.ProjectedInterest(asOf))
	}

	return total
}

// remainingPrincipal derives the outstanding principal: the most recent
// period's principal snapshot (the debt basis currently financed) less
// cumulative principal payments, floored at zero. With no periods yet the
// unit's own basis aggregate stands in.
func remainingPrincipal(unit *domain.FinancedUnit, periods []*domain.InterestPeriod) decimal.Decimal {
	debt := originalDebt(unit, periods)

	remaining := debt.Sub(unit.PaidPrincipal)
	if remaining.IsNegative() {
		return decimal.Zero
	}

	return remaining
}

func originalDebt(unit *domain.FinancedUnit, periods []*domain.InterestPeriod) decimal.Decimal {
	if n := len(periods); n > 0 {
		return periods[n-1].PrincipalAmount
	}

	return unit.BasisAmount(unit.PrincipalBasis)
}

// projectSummary assembles the debt summary from a consistent snapshot of
// the unit and its period history.
func projectSummary(unit *domain.FinancedUnit, periods []*domain.InterestPeriod, asOf time.Time) *domain.DebtSummary {
	status := unit.Status()

	summary := &domain.DebtSummary{
		UnitID:        unit.ID,
		Status:        status,
		PaidOffAt:     unit.PaidOffAt,
		PaidInterest:  unit.PaidInterest,
		PaidPrincipal: unit.PaidPrincipal,
		AsOf:          domain.DateOnly(asOf),
	}

	if status == domain.StatusNoDebt {
		summary.OriginalDebt = decimal.Zero
		summary.RemainingPrincipal = decimal.Zero
		summary.OutstandingInterest = decimal.Zero
		summary.LifetimeAccruedInterest = decimal.Zero
		summary.CurrentRate = decimal.Zero
		summary.TotalPayoffAmount = decimal.Zero

		return summary
	}

	summary.OriginalDebt = originalDebt(unit, periods)
	summary.LifetimeAccruedInterest = lifetimeAccrued(periods, summary.AsOf)

	if status == domain.StatusPaidOff {
		// Settlement zeroes the debt permanently; accrual can never restart.
		summary.RemainingPrincipal = decimal.Zero
		summary.OutstandingInterest = decimal.Zero
		summary.CurrentRate = decimal.Zero
		summary.TotalPayoffAmount = decimal.Zero

		return summary
	}

	summary.RemainingPrincipal = remainingPrincipal(unit, periods)
	summary.OutstandingInterest = summary.LifetimeAccruedInterest.Sub(unit.PaidInterest)

	if open := openPeriod(periods); open != nil {
		summary.CurrentRate = open.AnnualRate
	} else {
		summary.CurrentRate = decimal.Zero
	}

	summary.TotalPayoffAmount = summary.RemainingPrincipal.Add(summary.OutstandingInterest)

	return summary
}
