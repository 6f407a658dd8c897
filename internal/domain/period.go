package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	ratePercentDivisor = decimal.NewFromInt(100)
	daysInYear         = decimal.NewFromInt(365)
)

// InterestPeriod is one slice of a unit's rate history. The principal is a
// snapshot taken when the period opens and never tracks later cost changes.
// A period with a nil EndDate is the single open period of its unit; closed
// periods are immutable facts.
type InterestPeriod struct {
	ID              string
	UnitID          string
	StartDate       time.Time
	EndDate         *time.Time
	AnnualRate      decimal.Decimal
	PrincipalBasis  PrincipalBasis
	PrincipalAmount decimal.Decimal
	DaysCount       int
	AccruedInterest decimal.Decimal
	Note            string
	CreatedAt       time.Time
}

// IsOpen reports whether the period is still accruing.
func (p *InterestPeriod) IsOpen() bool {
	return p.EndDate == nil
}

// Close terminates the period at endDate and fixes its day count and
// accrued interest. Rounding to two decimals happens here, once.
func (p *InterestPeriod) Close(endDate time.Time) error {
	if !p.IsOpen() {
		return ErrNoOpenPeriod
	}

	endDate = DateOnly(endDate)
	days := DayCount(p.StartDate, endDate)
	if days < 0 {
		return ErrInvalidDate
	}

	p.EndDate = &endDate
	p.DaysCount = days
	p.AccruedInterest = PeriodInterest(p.PrincipalAmount, p.AnnualRate, days)

	return nil
}

// ProjectedInterest computes what the open period would accrue if it were
// closed at asOf. Closed periods return their frozen interest. The figure is
// computed identically to Close, including the final rounding, so a
// projection always equals what a close at the same date would persist.
func (p *InterestPeriod) ProjectedInterest(asOf time.Time) decimal.Decimal {
	if !p.IsOpen() {
		return p.AccruedInterest
	}

	days := DayCount(p.StartDate, asOf)
	if days <= 0 {
		return decimal.Zero
	}

	return PeriodInterest(p.PrincipalAmount, p.AnnualRate, days)
}

// PeriodInterest is the simple, non-compounding interest formula:
// principal x rate/100 x days/365, rounded half-up to two decimals.
func PeriodInterest(principal, annualRate decimal.Decimal, days int) decimal.Decimal {
	return principal.
		Mul(annualRate).
		Mul(decimal.NewFromInt(int64(days))).
		Div(ratePercentDivisor.Mul(daysInYear)).
		Round(2)
}

// ValidatePeriodSequence checks the contiguity invariant over a unit's
// ordered period history: each closed period ends exactly where its
// successor starts, except across an accrual halt, where a gap is real.
// At most one period may be open and it must be the last.
func ValidatePeriodSequence(periods []*InterestPeriod) error {
	openSeen := false
	for i, p := range periods {
		if openSeen {
			return ErrOpenPeriodExists
		}

		if p.IsOpen() {
			openSeen = true
			continue
		}

		if i+1 < len(periods) {
			next := periods[i+1]
			if next.StartDate.Before(*p.EndDate) {
				return ErrPeriodOverlap
			}
		}
	}

	return nil
}
