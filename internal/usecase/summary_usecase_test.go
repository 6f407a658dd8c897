package usecase_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/motorlot/financing/internal/domain"
	"github.com/motorlot/financing/internal/usecase"
	"github.com/motorlot/financing/internal/usecase/mocks"
)

func TestSummaryUseCase_ActiveUnit(t *testing.T) {
	f := newFixture()
	f.seedUnit(t, "u1", true)
	f.initialize(t, "u1", "7.5", dateP(2025, time.January, 1))

	sum, err := f.summary.Summarize(context.Background(), "u1", dateP(2025, time.April, 1))
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}

	if sum.Status != domain.StatusActive {
		t.Errorf("expected status %s, got %s", domain.StatusActive, sum.Status)
	}
	if !sum.OriginalDebt.Equal(dec("1000000")) {
		t.Errorf("expected original debt 1000000, got %s", sum.OriginalDebt)
	}
	if !sum.OutstandingInterest.Equal(dec("18493.15")) {
		t.Errorf("expected outstanding 18493.15, got %s", sum.OutstandingInterest)
	}
	if !sum.CurrentRate.Equal(dec("7.5")) {
		t.Errorf("expected current rate 7.5, got %s", sum.CurrentRate)
	}
	if !sum.TotalPayoffAmount.Equal(dec("1018493.15")) {
		t.Errorf("expected payoff 1018493.15, got %s", sum.TotalPayoffAmount)
	}
}

func TestSummaryUseCase_AfterRateChange(t *testing.T) {
	f := newFixture()
	f.seedUnit(t, "u1", true)
	f.initialize(t, "u1", "7.5", dateP(2025, time.January, 1))

	if _, err := f.financing.ChangeRate(context.Background(), usecase.ChangeRateInput{
		UnitID:        "u1",
		NewRate:       dec("9"),
		EffectiveDate: dateP(2025, time.April, 1),
	}); err != nil {
		t.Fatalf("change rate: %v", err)
	}

	sum, err := f.summary.Summarize(context.Background(), "u1", dateP(2025, time.July, 1))
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}

	// 90 days at 7.5% (18493.15) plus 91 days at 9% (22438.36).
	if !sum.LifetimeAccruedInterest.Equal(dec("40931.51")) {
		t.Errorf("expected lifetime accrued 40931.51, got %s", sum.LifetimeAccruedInterest)
	}
	if !sum.CurrentRate.Equal(dec("9")) {
		t.Errorf("expected current rate 9, got %s", sum.CurrentRate)
	}
}

func TestSummaryUseCase_NoDebtUnit(t *testing.T) {
	f := newFixture()
	f.seedUnit(t, "u1", false)

	sum, err := f.summary.Summarize(context.Background(), "u1", dateP(2025, time.June, 1))
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}

	if sum.Status != domain.StatusNoDebt {
		t.Errorf("expected status %s, got %s", domain.StatusNoDebt, sum.Status)
	}
	if !sum.OriginalDebt.IsZero() || !sum.RemainingPrincipal.IsZero() ||
		!sum.OutstandingInterest.IsZero() || !sum.TotalPayoffAmount.IsZero() {
		t.Errorf("expected an all-zero summary, got %+v", sum)
	}
}

func TestSummaryUseCase_PayoffQuoteGrowsWithDate(t *testing.T) {
	f := newFixture()
	f.seedUnit(t, "u1", true)
	f.initialize(t, "u1", "7.5", dateP(2025, time.January, 1))

	near, err := f.summary.Summarize(context.Background(), "u1", dateP(2025, time.April, 1))
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	far, err := f.summary.Summarize(context.Background(), "u1", dateP(2025, time.April, 11))
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}

	// 100 days accrue 20547.95 against 18493.15 for 90.
	diff := far.TotalPayoffAmount.Sub(near.TotalPayoffAmount)
	if !diff.Equal(dec("2054.80")) {
		t.Errorf("expected the quote to grow by 2054.80, got %s", diff)
	}
}

func TestSummaryUseCase_CacheHit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cached := &domain.DebtSummary{
		UnitID: "u1",
		Status: domain.StatusActive,
	}
	data, err := json.Marshal(cached)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	cache := mocks.NewMockCache(ctrl)
	cache.EXPECT().Get(gomock.Any(), "debt-summary:u1").Return(data, nil)

	uc := usecase.NewSummaryUseCase(
		mocks.NewMockTransactionManager(),
		mocks.NewMockUnitRepository(),
		mocks.NewMockPeriodRepository(),
		cache,
		0,
	)

	sum, err := uc.Summarize(context.Background(), "u1", nil)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if sum.UnitID != "u1" || sum.Status != domain.StatusActive {
		t.Errorf("expected the cached summary, got %+v", sum)
	}
}

func TestSummaryUseCase_ConfiguredCacheTTL(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cache := mocks.NewMockCache(ctrl)
	cache.EXPECT().Get(gomock.Any(), "debt-summary:u1").Return(nil, nil)
	cache.EXPECT().Set(gomock.Any(), "debt-summary:u1", gomock.Any(), 5*time.Minute).Return(nil)

	units := mocks.NewMockUnitRepository()
	uc := usecase.NewSummaryUseCase(
		mocks.NewMockTransactionManager(),
		units,
		mocks.NewMockPeriodRepository(),
		cache,
		5*time.Minute,
	)

	f := &fixture{units: units}
	f.seedUnit(t, "u1", true)

	if _, err := uc.Summarize(context.Background(), "u1", nil); err != nil {
		t.Fatalf("summarize: %v", err)
	}
}

func TestSummaryUseCase_HistoricalDateSkipsCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No Get or Set is expected on the cache for an explicit as-of date.
	cache := mocks.NewMockCache(ctrl)

	units := mocks.NewMockUnitRepository()
	uc := usecase.NewSummaryUseCase(
		mocks.NewMockTransactionManager(),
		units,
		mocks.NewMockPeriodRepository(),
		cache,
		0,
	)

	f := &fixture{units: units}
	f.seedUnit(t, "u1", true)

	if _, err := uc.Summarize(context.Background(), "u1", dateP(2025, time.March, 1)); err != nil {
		t.Fatalf("summarize: %v", err)
	}
}

func TestConsistencyUseCase_Check(t *testing.T) {
	f := newFixture()
	f.seedUnit(t, "u1", true)
	f.seedUnit(t, "u2", true)
	f.initialize(t, "u1", "7.5", dateP(2025, time.January, 1))
	f.initialize(t, "u2", "6", dateP(2025, time.February, 1))

	if _, err := f.payment.ApplyPayment(context.Background(), usecase.ApplyPaymentInput{
		UnitID:      "u1",
		Amount:      dec("25000"),
		PaymentDate: date(2025, time.April, 1),
	}); err != nil {
		t.Fatalf("apply payment: %v", err)
	}

	uc := usecase.NewConsistencyUseCase(f.units, f.periods, f.payments)

	report, err := uc.Check(context.Background())
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if report.UnitsChecked != 2 {
		t.Errorf("expected 2 units checked, got %d", report.UnitsChecked)
	}
	if !report.Consistent {
		t.Fatalf("expected a consistent ledger, got issues %+v", report.Issues)
	}

	// Skew the cumulative counter behind the payment history.
	unit, _ := f.units.GetByID(context.Background(), "u1")
	unit.PaidInterest = unit.PaidInterest.Add(dec("0.50"))

	report, err = uc.Check(context.Background())
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if report.Consistent {
		t.Fatal("expected the skewed counter to be flagged")
	}
	if len(report.Issues) != 1 || report.Issues[0].UnitID != "u1" {
		t.Errorf("expected one issue on u1, got %+v", report.Issues)
	}
}
