package dto

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/motorlot/financing/internal/domain"
	"github.com/motorlot/financing/internal/usecase"
)

var validate = validator.New()

// Validate runs struct tag validation on a request DTO.
func Validate(req any) error {
	return validate.Struct(req)
}

const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, domain.ErrInvalidDate
	}

	return t, nil
}

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}

	t, err := parseDate(s)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func parseOptionalBasis(s string) (*domain.PrincipalBasis, error) {
	if s == "" {
		return nil, nil
	}

	basis := domain.PrincipalBasis(s)
	if !basis.Valid() {
		return nil, domain.ErrInvalidBasis
	}

	return &basis, nil
}

// CreateUnitRequest represents a request to register a stock unit.
type CreateUnitRequest struct {
	StockNumber       string          `json:"stock_number" validate:"required"`
	VIN               string          `json:"vin" validate:"required,min=11,max=17"`
	Model             string          `json:"model" validate:"required"`
	BaseCost          decimal.Decimal `json:"base_cost"`
	TransportCost     decimal.Decimal `json:"transport_cost"`
	AccessoryCost     decimal.Decimal `json:"accessory_cost"`
	OtherCosts        decimal.Decimal `json:"other_costs"`
	PrincipalBasis    string          `json:"principal_basis" validate:"required,oneof=BASE_COST_ONLY TOTAL_COST"`
	InterestStartDate string          `json:"interest_start_date" validate:"required,datetime=2006-01-02"`
	HasFinancing      bool            `json:"has_financing"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateUnitRequest) ToUseCaseInput() (usecase.CreateUnitInput, error) {
	start, err := parseDate(r.InterestStartDate)
	if err != nil {
		return usecase.CreateUnitInput{}, err
	}

	return usecase.CreateUnitInput{
		StockNumber:       r.StockNumber,
		VIN:               r.VIN,
		Model:             r.Model,
		BaseCost:          r.BaseCost,
		TransportCost:     r.TransportCost,
		AccessoryCost:     r.AccessoryCost,
		OtherCosts:        r.OtherCosts,
		PrincipalBasis:    domain.PrincipalBasis(r.PrincipalBasis),
		InterestStartDate: start,
		HasFinancing:      r.HasFinancing,
	}, nil
}

// UpdateCostsRequest represents a request to update a unit's cost fields.
type UpdateCostsRequest struct {
	BaseCost      decimal.Decimal `json:"base_cost"`
	TransportCost decimal.Decimal `json:"transport_cost"`
	AccessoryCost decimal.Decimal `json:"accessory_cost"`
	OtherCosts    decimal.Decimal `json:"other_costs"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateCostsRequest) ToUseCaseInput(unitID string) usecase.UpdateCostsInput {
	return usecase.UpdateCostsInput{
		UnitID:        unitID,
		BaseCost:      r.BaseCost,
		TransportCost: r.TransportCost,
		AccessoryCost: r.AccessoryCost,
		OtherCosts:    r.OtherCosts,
	}
}

// InitializeFinancingRequest represents a request to open the first interest
// period.
type InitializeFinancingRequest struct {
	AnnualRate     decimal.Decimal `json:"annual_rate"`
	PrincipalBasis string          `json:"principal_basis" validate:"omitempty,oneof=BASE_COST_ONLY TOTAL_COST"`
	StartDate      string          `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	Note           string          `json:"note"`
}

// ToUseCaseInput converts to use case input.
func (r *InitializeFinancingRequest) ToUseCaseInput(unitID string) (usecase.InitializeInput, error) {
	basis, err := parseOptionalBasis(r.PrincipalBasis)
	if err != nil {
		return usecase.InitializeInput{}, err
	}
	start, err := parseOptionalDate(r.StartDate)
	if err != nil {
		return usecase.InitializeInput{}, err
	}

	return usecase.InitializeInput{
		UnitID:         unitID,
		AnnualRate:     r.AnnualRate,
		PrincipalBasis: basis,
		StartDate:      start,
		Note:           r.Note,
	}, nil
}

// ChangeRateRequest represents a request for a rate or basis change.
type ChangeRateRequest struct {
	NewRate       decimal.Decimal `json:"new_rate"`
	NewBasis      string          `json:"new_basis" validate:"omitempty,oneof=BASE_COST_ONLY TOTAL_COST"`
	EffectiveDate string          `json:"effective_date" validate:"omitempty,datetime=2006-01-02"`
	Note          string          `json:"note"`
}

// ToUseCaseInput converts to use case input.
func (r *ChangeRateRequest) ToUseCaseInput(unitID string) (usecase.ChangeRateInput, error) {
	basis, err := parseOptionalBasis(r.NewBasis)
	if err != nil {
		return usecase.ChangeRateInput{}, err
	}
	effective, err := parseOptionalDate(r.EffectiveDate)
	if err != nil {
		return usecase.ChangeRateInput{}, err
	}

	return usecase.ChangeRateInput{
		UnitID:        unitID,
		NewRate:       r.NewRate,
		NewBasis:      basis,
		EffectiveDate: effective,
		Note:          r.Note,
	}, nil
}

// StopAccrualRequest represents a request to halt interest accrual.
type StopAccrualRequest struct {
	StopDate string `json:"stop_date" validate:"omitempty,datetime=2006-01-02"`
	Note     string `json:"note"`
}

// ToUseCaseInput converts to use case input.
func (r *StopAccrualRequest) ToUseCaseInput(unitID string) (usecase.StopInput, error) {
	stopDate, err := parseOptionalDate(r.StopDate)
	if err != nil {
		return usecase.StopInput{}, err
	}

	return usecase.StopInput{
		UnitID:   unitID,
		StopDate: stopDate,
		Note:     r.Note,
	}, nil
}

// ResumeAccrualRequest represents a request to resume accrual after a halt.
type ResumeAccrualRequest struct {
	AnnualRate     decimal.Decimal `json:"annual_rate"`
	PrincipalBasis string          `json:"principal_basis" validate:"omitempty,oneof=BASE_COST_ONLY TOTAL_COST"`
	ResumeDate     string          `json:"resume_date" validate:"omitempty,datetime=2006-01-02"`
	Note           string          `json:"note"`
}

// ToUseCaseInput converts to use case input.
func (r *ResumeAccrualRequest) ToUseCaseInput(unitID string) (usecase.ResumeInput, error) {
	basis, err := parseOptionalBasis(r.PrincipalBasis)
	if err != nil {
		return usecase.ResumeInput{}, err
	}
	resumeDate, err := parseOptionalDate(r.ResumeDate)
	if err != nil {
		return usecase.ResumeInput{}, err
	}

	return usecase.ResumeInput{
		UnitID:         unitID,
		AnnualRate:     r.AnnualRate,
		PrincipalBasis: basis,
		ResumeDate:     resumeDate,
		Note:           r.Note,
	}, nil
}

// ApplyPaymentRequest represents a request to record a debt payment.
type ApplyPaymentRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	PaymentDate     string          `json:"payment_date" validate:"required,datetime=2006-01-02"`
	Method          string          `json:"method" validate:"omitempty,oneof=cash bank_transfer check floor_plan_draw"`
	ReferenceNumber string          `json:"reference_number"`
	Note            string          `json:"note"`
}

// ToUseCaseInput converts to use case input.
func (r *ApplyPaymentRequest) ToUseCaseInput(unitID string) (usecase.ApplyPaymentInput, error) {
	payDate, err := parseDate(r.PaymentDate)
	if err != nil {
		return usecase.ApplyPaymentInput{}, err
	}

	return usecase.ApplyPaymentInput{
		UnitID:          unitID,
		Amount:          r.Amount,
		PaymentDate:     payDate,
		Method:          r.Method,
		ReferenceNumber: r.ReferenceNumber,
		Note:            r.Note,
	}, nil
}
