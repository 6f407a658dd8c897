package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PrincipalBasis selects which cost aggregate interest is computed against.
type PrincipalBasis string

const (
	BasisBaseCostOnly PrincipalBasis = "BASE_COST_ONLY"
	BasisTotalCost    PrincipalBasis = "TOTAL_COST"
)

// Valid reports whether the basis is one of the known values.
func (b PrincipalBasis) Valid() bool {
	return b == BasisBaseCostOnly || b == BasisTotalCost
}

// DebtStatus is the externally visible financing state of a unit.
type DebtStatus string

const (
	StatusNoDebt  DebtStatus = "NO_DEBT"
	StatusActive  DebtStatus = "ACTIVE"
	StatusPaidOff DebtStatus = "PAID_OFF"
)

// FinancedUnit is a stock unit carrying floor-plan financing. The cost
// fields are supplied by stock management; the accrual engine only reads
// them when snapshotting a period principal.
type FinancedUnit struct {
	ID                string
	StockNumber       string
	VIN               string
	Model             string
	BaseCost          decimal.Decimal
	TransportCost     decimal.Decimal
	AccessoryCost     decimal.Decimal
	OtherCosts        decimal.Decimal
	PrincipalBasis    PrincipalBasis
	InterestStartDate time.Time
	HasFinancing      bool
	AccrualHalted     bool
	HaltedAt          *time.Time
	PaidOffAt         *time.Time
	PaidInterest      decimal.Decimal
	PaidPrincipal     decimal.Decimal
	Version           int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TotalCost is the sum of all four cost components.
func (u *FinancedUnit) TotalCost() decimal.Decimal {
	return u.BaseCost.
		Add(u.TransportCost).
		Add(u.AccessoryCost).
		Add(u.OtherCosts)
}

// BasisAmount returns the cost aggregate for the given basis.
func (u *FinancedUnit) BasisAmount(basis PrincipalBasis) decimal.Decimal {
	if basis == BasisBaseCostOnly {
		return u.BaseCost
	}

	return u.TotalCost()
}

// Status derives the debt status from the unit's financing flags.
func (u *FinancedUnit) Status() DebtStatus {
	switch {
	case !u.HasFinancing:
		return StatusNoDebt
	case u.PaidOffAt != nil:
		return StatusPaidOff
	default:
		return StatusActive
	}
}

// Validate checks the unit's cost fields and basis.
func (u *FinancedUnit) Validate() error {
	for _, c := range []decimal.Decimal{u.BaseCost, u.TransportCost, u.AccessoryCost, u.OtherCosts} {
		if c.IsNegative() {
			return ErrNegativeCost
		}
	}

	if !u.PrincipalBasis.Valid() {
		return ErrInvalidBasis
	}

	return nil
}
