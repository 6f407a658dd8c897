package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/motorlot/financing/internal/domain"
	"github.com/motorlot/financing/internal/usecase"
)

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}

	s := t.Format(dateLayout)
	return &s
}

// UnitResponse represents a stock unit in API responses.
type UnitResponse struct {
	ID                string          `json:"id"`
	StockNumber       string          `json:"stock_number"`
	VIN               string          `json:"vin"`
	Model             string          `json:"model"`
	BaseCost          decimal.Decimal `json:"base_cost"`
	TransportCost     decimal.Decimal `json:"transport_cost"`
	AccessoryCost     decimal.Decimal `json:"accessory_cost"`
	OtherCosts        decimal.Decimal `json:"other_costs"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	PrincipalBasis    string          `json:"principal_basis"`
	InterestStartDate string          `json:"interest_start_date"`
	HasFinancing      bool            `json:"has_financing"`
	AccrualHalted     bool            `json:"accrual_halted"`
	Status            string          `json:"status"`
	PaidOffAt         *string         `json:"paid_off_at,omitempty"`
	Version           int64           `json:"version"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// UnitFromDomain converts a domain unit to a response.
func UnitFromDomain(u *domain.FinancedUnit) *UnitResponse {
	return &UnitResponse{
		ID:                u.ID,
		StockNumber:       u.StockNumber,
		VIN:               u.VIN,
		Model:             u.Model,
		BaseCost:          u.BaseCost,
		TransportCost:     u.TransportCost,
		AccessoryCost:     u.AccessoryCost,
		OtherCosts:        u.OtherCosts,
		TotalCost:         u.TotalCost(),
		PrincipalBasis:    string(u.PrincipalBasis),
		InterestStartDate: formatDate(u.InterestStartDate),
		HasFinancing:      u.HasFinancing,
		AccrualHalted:     u.AccrualHalted,
		Status:            string(u.Status()),
		PaidOffAt:         formatDatePtr(u.PaidOffAt),
		Version:           u.Version,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

// UnitsFromDomain converts domain units to responses.
func UnitsFromDomain(units []*domain.FinancedUnit) []*UnitResponse {
	result := make([]*UnitResponse, len(units))
	for i, u := range units {
		result[i] = UnitFromDomain(u)
	}
	return result
}

// ListUnitsResponse wraps a unit listing.
type ListUnitsResponse struct {
	Units []*UnitResponse `json:"units"`
	Total int64           `json:"total"`
}

// PeriodResponse represents an interest period in API responses.
type PeriodResponse struct {
	ID              string          `json:"id"`
	UnitID          string          `json:"unit_id"`
	StartDate       string          `json:"start_date"`
	EndDate         *string         `json:"end_date,omitempty"`
	AnnualRate      decimal.Decimal `json:"annual_rate"`
	PrincipalBasis  string          `json:"principal_basis"`
	PrincipalAmount decimal.Decimal `json:"principal_amount"`
	DaysCount       int             `json:"days_count"`
	AccruedInterest decimal.Decimal `json:"accrued_interest"`
	Open            bool            `json:"open"`
	Note            string          `json:"note,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// PeriodFromDomain converts a domain period to a response.
func PeriodFromDomain(p *domain.InterestPeriod) *PeriodResponse {
	return &PeriodResponse{
		ID:              p.ID,
		UnitID:          p.UnitID,
		StartDate:       formatDate(p.StartDate),
		EndDate:         formatDatePtr(p.EndDate),
		AnnualRate:      p.AnnualRate,
		PrincipalBasis:  string(p.PrincipalBasis),
		PrincipalAmount: p.PrincipalAmount,
		DaysCount:       p.DaysCount,
		AccruedInterest: p.AccruedInterest,
		Open:            p.IsOpen(),
		Note:            p.Note,
		CreatedAt:       p.CreatedAt,
	}
}

// PeriodsFromDomain converts domain periods to responses.
func PeriodsFromDomain(periods []*domain.InterestPeriod) []*PeriodResponse {
	result := make([]*PeriodResponse, len(periods))
	for i, p := range periods {
		result[i] = PeriodFromDomain(p)
	}
	return result
}

// ListPeriodsResponse wraps a period listing.
type ListPeriodsResponse struct {
	Periods []*PeriodResponse `json:"periods"`
	Total   int64             `json:"total"`
}

// PaymentResponse represents a debt payment in API responses.
type PaymentResponse struct {
	ID                      string          `json:"id"`
	UnitID                  string          `json:"unit_id"`
	Amount                  decimal.Decimal `json:"amount"`
	PaymentDate             string          `json:"payment_date"`
	Method                  string          `json:"method,omitempty"`
	ReferenceNumber         string          `json:"reference_number,omitempty"`
	Note                    string          `json:"note,omitempty"`
	InterestPortion         decimal.Decimal `json:"interest_portion"`
	PrincipalPortion        decimal.Decimal `json:"principal_portion"`
	RemainingPrincipalAfter decimal.Decimal `json:"remaining_principal_after"`
	CreatedAt               time.Time       `json:"created_at"`
}

// PaymentFromDomain converts a domain payment to a response.
func PaymentFromDomain(p *domain.DebtPayment) *PaymentResponse {
	return &PaymentResponse{
		ID:                      p.ID,
		UnitID:                  p.UnitID,
		Amount:                  p.Amount,
		PaymentDate:             formatDate(p.PaymentDate),
		Method:                  p.Method,
		ReferenceNumber:         p.ReferenceNumber,
		Note:                    p.Note,
		InterestPortion:         p.InterestPortion,
		PrincipalPortion:        p.PrincipalPortion,
		RemainingPrincipalAfter: p.RemainingPrincipalAfter,
		CreatedAt:               p.CreatedAt,
	}
}

// PaymentsFromDomain converts domain payments to responses.
func PaymentsFromDomain(payments []*domain.DebtPayment) []*PaymentResponse {
	result := make([]*PaymentResponse, len(payments))
	for i, p := range payments {
		result[i] = PaymentFromDomain(p)
	}
	return result
}

// ListPaymentsResponse wraps a payment listing.
type ListPaymentsResponse struct {
	Payments []*PaymentResponse `json:"payments"`
	Total    int64              `json:"total"`
}

// ApplyPaymentResponse carries the recorded payment and the summary after it.
type ApplyPaymentResponse struct {
	Payment *PaymentResponse     `json:"payment"`
	Summary *DebtSummaryResponse `json:"summary"`
	Settled bool                 `json:"settled"`
}

// ApplyPaymentFromResult converts a use case result to a response.
func ApplyPaymentFromResult(res *usecase.ApplyPaymentResult) *ApplyPaymentResponse {
	return &ApplyPaymentResponse{
		Payment: PaymentFromDomain(res.Payment),
		Summary: SummaryFromDomain(res.Summary),
		Settled: res.Settled,
	}
}

// DebtSummaryResponse represents the debt summary in API responses.
type DebtSummaryResponse struct {
	UnitID                  string          `json:"unit_id"`
	Status                  string          `json:"status"`
	OriginalDebt            decimal.Decimal `json:"original_debt"`
	PaidPrincipal           decimal.Decimal `json:"paid_principal"`
	RemainingPrincipal      decimal.Decimal `json:"remaining_principal"`
	PaidInterest            decimal.Decimal `json:"paid_interest"`
	OutstandingInterest     decimal.Decimal `json:"outstanding_interest"`
	LifetimeAccruedInterest decimal.Decimal `json:"lifetime_accrued_interest"`
	CurrentRate             decimal.Decimal `json:"current_rate"`
	TotalPayoffAmount       decimal.Decimal `json:"total_payoff_amount"`
	PaidOffAt               *string         `json:"paid_off_at,omitempty"`
	AsOf                    string          `json:"as_of"`
}

// SummaryFromDomain converts a domain summary to a response.
func SummaryFromDomain(s *domain.DebtSummary) *DebtSummaryResponse {
	return &DebtSummaryResponse{
		UnitID:                  s.UnitID,
		Status:                  string(s.Status),
		OriginalDebt:            s.OriginalDebt,
		PaidPrincipal:           s.PaidPrincipal,
		RemainingPrincipal:      s.RemainingPrincipal,
		PaidInterest:            s.PaidInterest,
		OutstandingInterest:     s.OutstandingInterest,
		LifetimeAccruedInterest: s.LifetimeAccruedInterest,
		CurrentRate:             s.CurrentRate,
		TotalPayoffAmount:       s.TotalPayoffAmount,
		PaidOffAt:               formatDatePtr(s.PaidOffAt),
		AsOf:                    formatDate(s.AsOf),
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
