package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DebtSummary is the derived financing view consumed by the rest of the
// back office. It is computed on demand and never persisted.
type DebtSummary struct {
	UnitID                  string
	OriginalDebt            decimal.Decimal
	PaidPrincipal           decimal.Decimal
	RemainingPrincipal      decimal.Decimal
	PaidInterest            decimal.Decimal
	OutstandingInterest     decimal.Decimal
	LifetimeAccruedInterest decimal.Decimal
	CurrentRate             decimal.Decimal
	Status                  DebtStatus
	TotalPayoffAmount       decimal.Decimal
	PaidOffAt               *time.Time
	AsOf                    time.Time
}
