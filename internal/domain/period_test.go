package domain_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/motorlot/financing/internal/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestPeriodInterest(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		rate      string
		days      int
		want      string
	}{
		{"ninety days at 7.5", "1000000", "7.5", 90, "18493.15"},
		{"zero days", "1000000", "7.5", 0, "0"},
		{"zero rate", "1000000", "0", 90, "0"},
		{"rounds half up", "1000", "7.3", 5, "1"}, // 1000*0.073*5/365 = 1.0
		{"small principal", "100", "12", 30, "0.99"},
		{"full year at 10", "50000", "10", 365, "5000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.PeriodInterest(dec(tt.principal), dec(tt.rate), tt.days)
			if !got.Equal(dec(tt.want)) {
				t.Errorf("PeriodInterest(%s, %s, %d) = %s, want %s",
					tt.principal, tt.rate, tt.days, got, tt.want)
			}
		})
	}
}

func TestInterestPeriod_Close(t *testing.T) {
	p := &domain.InterestPeriod{
		ID:              "p1",
		UnitID:          "u1",
		StartDate:       date(2025, 1, 1),
		AnnualRate:      dec("7.5"),
		PrincipalBasis:  domain.BasisBaseCostOnly,
		PrincipalAmount: dec("1000000"),
	}

	if err := p.Close(date(2025, 4, 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.IsOpen() {
		t.Error("period should be closed")
	}
	if p.DaysCount != 90 {
		t.Errorf("expected 90 days, got %d", p.DaysCount)
	}
	if !p.AccruedInterest.Equal(dec("18493.15")) {
		t.Errorf("expected accrued interest 18493.15, got %s", p.AccruedInterest)
	}
}

func TestInterestPeriod_Close_BeforeStart(t *testing.T) {
	p := &domain.InterestPeriod{
		StartDate:       date(2025, 4, 1),
		AnnualRate:      dec("7.5"),
		PrincipalAmount: dec("1000000"),
	}

	err := p.Close(date(2025, 3, 1))
	if !errors.Is(err, domain.ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
}

func TestInterestPeriod_Close_AlreadyClosed(t *testing.T) {
	end := date(2025, 2, 1)
	p := &domain.InterestPeriod{
		StartDate:       date(2025, 1, 1),
		EndDate:         &end,
		AnnualRate:      dec("7.5"),
		PrincipalAmount: dec("1000000"),
	}

	err := p.Close(date(2025, 3, 1))
	if !errors.Is(err, domain.ErrNoOpenPeriod) {
		t.Errorf("expected ErrNoOpenPeriod, got %v", err)
	}
}

func TestInterestPeriod_ProjectedInterest(t *testing.T) {
	p := &domain.InterestPeriod{
		StartDate:       date(2025, 1, 1),
		AnnualRate:      dec("7.5"),
		PrincipalAmount: dec("1000000"),
	}

	got := p.ProjectedInterest(date(2025, 4, 1))
	if !got.Equal(dec("18493.15")) {
		t.Errorf("expected 18493.15, got %s", got)
	}

	// Projection equals what a close at the same date persists.
	if err := p.Close(date(2025, 4, 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.AccruedInterest.Equal(got) {
		t.Errorf("projection %s differs from close %s", got, p.AccruedInterest)
	}

	// Closed period keeps its frozen figure regardless of asOf.
	later := p.ProjectedInterest(date(2026, 1, 1))
	if !later.Equal(p.AccruedInterest) {
		t.Errorf("closed period projection %s, want frozen %s", later, p.AccruedInterest)
	}
}

func TestInterestPeriod_ProjectedInterest_BeforeStart(t *testing.T) {
	p := &domain.InterestPeriod{
		StartDate:       date(2025, 6, 1),
		AnnualRate:      dec("7.5"),
		PrincipalAmount: dec("1000000"),
	}

	if got := p.ProjectedInterest(date(2025, 5, 1)); !got.IsZero() {
		t.Errorf("expected zero projection before start, got %s", got)
	}
}

func TestValidatePeriodSequence(t *testing.T) {
	end1 := date(2025, 4, 1)
	end2 := date(2025, 7, 1)

	contiguous := []*domain.InterestPeriod{
		{StartDate: date(2025, 1, 1), EndDate: &end1},
		{StartDate: date(2025, 4, 1), EndDate: &end2},
		{StartDate: date(2025, 7, 1)},
	}
	if err := domain.ValidatePeriodSequence(contiguous); err != nil {
		t.Errorf("contiguous sequence rejected: %v", err)
	}

	// A gap after a halt is legitimate.
	gapped := []*domain.InterestPeriod{
		{StartDate: date(2025, 1, 1), EndDate: &end1},
		{StartDate: date(2025, 5, 1)},
	}
	if err := domain.ValidatePeriodSequence(gapped); err != nil {
		t.Errorf("gapped sequence after halt rejected: %v", err)
	}

	overlapping := []*domain.InterestPeriod{
		{StartDate: date(2025, 1, 1), EndDate: &end1},
		{StartDate: date(2025, 3, 1), EndDate: &end2},
	}
	if err := domain.ValidatePeriodSequence(overlapping); !errors.Is(err, domain.ErrPeriodOverlap) {
		t.Errorf("expected ErrPeriodOverlap, got %v", err)
	}

	twoOpen := []*domain.InterestPeriod{
		{StartDate: date(2025, 1, 1)},
		{StartDate: date(2025, 4, 1)},
	}
	if err := domain.ValidatePeriodSequence(twoOpen); !errors.Is(err, domain.ErrOpenPeriodExists) {
		t.Errorf("expected ErrOpenPeriodExists, got %v", err)
	}
}
