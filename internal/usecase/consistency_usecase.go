package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/motorlot/financing/internal/domain"
)

// ConsistencyUseCase sweeps every financed unit and verifies the ledger
// invariants that the write path is supposed to preserve. It backs the
// back-office consistency endpoint and the CLI check.
type ConsistencyUseCase struct {
	unitRepo    UnitRepository
	periodRepo  PeriodRepository
	paymentRepo PaymentRepository
}

// NewConsistencyUseCase creates a new ConsistencyUseCase.
func NewConsistencyUseCase(
	unitRepo UnitRepository,
	periodRepo PeriodRepository,
	paymentRepo PaymentRepository,
) *ConsistencyUseCase {
	return &ConsistencyUseCase{
		unitRepo:    unitRepo,
		periodRepo:  periodRepo,
		paymentRepo: paymentRepo,
	}
}

// ConsistencyIssue describes one invariant violation on one unit.
type ConsistencyIssue struct {
	UnitID  string `json:"unit_id"`
	Problem string `json:"problem"`
}

// ConsistencyReport is the result of a full sweep.
type ConsistencyReport struct {
	UnitsChecked int                `json:"units_checked"`
	Consistent   bool               `json:"consistent"`
	Issues       []ConsistencyIssue `json:"issues,omitempty"`
}

// Check verifies, per financed unit: period contiguity and the single open
// period invariant, exact partitioning of each payment into portions,
// non-negative remaining principal, and the terminality of PAID_OFF.
func (uc *ConsistencyUseCase) Check(ctx context.Context) (*ConsistencyReport, error) {
	units, err := uc.unitRepo.ListFinanced(ctx)
	if err != nil {
		return nil, err
	}

	report := &ConsistencyReport{Consistent: true}

	for _, unit := range units {
		report.UnitsChecked++

		periods, err := uc.periodRepo.ListByUnit(ctx, unit.ID)
		if err != nil {
			return nil, err
		}

		if err := domain.ValidatePeriodSequence(periods); err != nil {
			report.add(unit.ID, err.Error())
		}

		if unit.PaidOffAt != nil && openPeriod(periods) != nil {
			report.add(unit.ID, "paid-off unit still has an open period")
		}

		payments, err := uc.paymentRepo.ListByUnit(ctx, unit.ID, MaxPageSize, 0)
		if err != nil {
			return nil, err
		}

		paidInterest := decimal.Zero
		paidPrincipal := decimal.Zero
		for _, p := range payments {
			if err := p.Validate(); err != nil {
				report.add(unit.ID, fmt.Sprintf("payment %s: %v", p.ID, err))
			}
			paidInterest = paidInterest.Add(p.InterestPortion)
			paidPrincipal = paidPrincipal.Add(p.PrincipalPortion)
		}

		if !paidInterest.Equal(unit.PaidInterest) {
			report.add(unit.ID, fmt.Sprintf(
				"cumulative paid interest %s does not match payment history %s",
				unit.PaidInterest, paidInterest))
		}
		if !paidPrincipal.Equal(unit.PaidPrincipal) {
			report.add(unit.ID, fmt.Sprintf(
				"cumulative paid principal %s does not match payment history %s",
				unit.PaidPrincipal, paidPrincipal))
		}

		if unit.PaidPrincipal.GreaterThan(originalDebt(unit, periods).Add(domain.SettlementEpsilon)) {
			report.add(unit.ID, "cumulative principal payments exceed the financed debt")
		}
	}

	return report, nil
}

func (r *ConsistencyReport) add(unitID, problem string) {
	r.Consistent = false
	r.Issues = append(r.Issues, ConsistencyIssue{UnitID: unitID, Problem: problem})
}
