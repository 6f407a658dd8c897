package domain

import (
	"github.com/shopspring/decimal"
)

var maxAnnualRate = decimal.NewFromInt(100)

// SettlementEpsilon is the absolute threshold under which a remaining
// principal counts as fully settled (0.01 currency unit). Fixed absolute
// value; it does not scale with amount magnitude.
var SettlementEpsilon = decimal.New(1, -2)

// ValidateRate checks an annual interest rate in percent.
func ValidateRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(maxAnnualRate) {
		return ErrInvalidRate
	}

	return nil
}

// ValidateAmount checks a monetary payment amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	return nil
}
