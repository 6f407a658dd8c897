package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DebtPayment records one incoming payment against a financed unit's debt.
// Payments are immutable once created; a correction is a separate
// compensating record, never a mutation.
type DebtPayment struct {
	ID                      string
	UnitID                  string
	Amount                  decimal.Decimal
	PaymentDate             time.Time
	Method                  string
	ReferenceNumber         string
	Note                    string
	InterestPortion         decimal.Decimal
	PrincipalPortion        decimal.Decimal
	RemainingPrincipalAfter decimal.Decimal
	CreatedAt               time.Time
}

// Validate checks the payment's internal consistency: the interest and
// principal portions must partition the amount exactly.
func (p *DebtPayment) Validate() error {
	if p.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if !p.InterestPortion.Add(p.PrincipalPortion).Equal(p.Amount) {
		return ErrPortionMismatch
	}

	if p.RemainingPrincipalAfter.IsNegative() {
		return ErrPortionMismatch
	}

	return nil
}
