package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/motorlot/financing/internal/adapter/http/dto"
	"github.com/motorlot/financing/internal/domain"
	"github.com/motorlot/financing/internal/usecase"
)

type paymentServiceStub struct {
	applyFn func(ctx context.Context, input usecase.ApplyPaymentInput) (*usecase.ApplyPaymentResult, error)
	listFn  func(ctx context.Context, input usecase.ListPaymentsInput) ([]*domain.DebtPayment, error)
}

func (s *paymentServiceStub) ApplyPayment(ctx context.Context, input usecase.ApplyPaymentInput) (*usecase.ApplyPaymentResult, error) {
	return s.applyFn(ctx, input)
}

func (s *paymentServiceStub) ListPayments(ctx context.Context, input usecase.ListPaymentsInput) ([]*domain.DebtPayment, error) {
	return s.listFn(ctx, input)
}

type summaryServiceStub struct {
	summarizeFn func(ctx context.Context, unitID string, asOf *time.Time) (*domain.DebtSummary, error)
}

func (s *summaryServiceStub) Summarize(ctx context.Context, unitID string, asOf *time.Time) (*domain.DebtSummary, error) {
	return s.summarizeFn(ctx, unitID, asOf)
}

func testPaymentResult(unitID string) *usecase.ApplyPaymentResult {
	payDate := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	return &usecase.ApplyPaymentResult{
		Payment: &domain.DebtPayment{
			ID:                      "pay-1",
			UnitID:                  unitID,
			Amount:                  decimal.NewFromInt(50000),
			PaymentDate:             payDate,
			InterestPortion:         decimal.RequireFromString("18493.15"),
			PrincipalPortion:        decimal.RequireFromString("31506.85"),
			RemainingPrincipalAfter: decimal.RequireFromString("968493.15"),
		},
		Summary: &domain.DebtSummary{
			UnitID:             unitID,
			Status:             domain.StatusActive,
			RemainingPrincipal: decimal.RequireFromString("968493.15"),
			AsOf:               payDate,
		},
	}
}

func TestPaymentHandler_Apply_Success(t *testing.T) {
	var captured usecase.ApplyPaymentInput
	handler := NewPaymentHandler(&paymentServiceStub{
		applyFn: func(ctx context.Context, input usecase.ApplyPaymentInput) (*usecase.ApplyPaymentResult, error) {
			captured = input
			return testPaymentResult(input.UnitID), nil
		},
	}, nil)

	body, _ := json.Marshal(dto.ApplyPaymentRequest{
		Amount:      decimal.NewFromInt(50000),
		PaymentDate: "2025-04-01",
		Method:      "bank_transfer",
	})

	req := httptest.NewRequest(http.MethodPost, "/units/unit-1/payments", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "unit-1")
	rec := httptest.NewRecorder()

	handler.Apply(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.UnitID != "unit-1" || captured.Method != "bank_transfer" {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.ApplyPaymentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Payment.ID != "pay-1" || resp.Settled {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if !resp.Payment.InterestPortion.Equal(decimal.RequireFromString("18493.15")) {
		t.Fatalf("expected interest portion 18493.15, got %s", resp.Payment.InterestPortion)
	}
}

func TestPaymentHandler_Apply_InvalidMethod(t *testing.T) {
	handler := NewPaymentHandler(&paymentServiceStub{
		applyFn: func(ctx context.Context, input usecase.ApplyPaymentInput) (*usecase.ApplyPaymentResult, error) {
			t.Fatal("ApplyPayment should not be called for an unknown method")
			return nil, nil
		},
	}, nil)

	body, _ := json.Marshal(dto.ApplyPaymentRequest{
		Amount:      decimal.NewFromInt(100),
		PaymentDate: "2025-04-01",
		Method:      "barter",
	})

	req := httptest.NewRequest(http.MethodPost, "/units/unit-1/payments", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "unit-1")
	rec := httptest.NewRecorder()

	handler.Apply(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPaymentHandler_Apply_Overpayment(t *testing.T) {
	handler := NewPaymentHandler(&paymentServiceStub{
		applyFn: func(ctx context.Context, input usecase.ApplyPaymentInput) (*usecase.ApplyPaymentResult, error) {
			return nil, domain.ErrAmountExceedsPayoff
		},
	}, nil)

	body, _ := json.Marshal(dto.ApplyPaymentRequest{
		Amount:      decimal.NewFromInt(9999999),
		PaymentDate: "2025-04-01",
	})

	req := httptest.NewRequest(http.MethodPost, "/units/unit-1/payments", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "unit-1")
	rec := httptest.NewRecorder()

	handler.Apply(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestPaymentHandler_List(t *testing.T) {
	handler := NewPaymentHandler(&paymentServiceStub{
		listFn: func(ctx context.Context, input usecase.ListPaymentsInput) ([]*domain.DebtPayment, error) {
			if input.UnitID != "unit-1" || input.Limit != 10 {
				t.Fatalf("unexpected input: %+v", input)
			}
			return []*domain.DebtPayment{testPaymentResult("unit-1").Payment}, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/units/unit-1/payments?limit=10", nil)
	req = setChiURLParam(req, "id", "unit-1")
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ListPaymentsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 1 {
		t.Fatalf("expected one payment, got %+v", resp)
	}
}

func TestPaymentHandler_Summary(t *testing.T) {
	handler := NewPaymentHandler(nil, &summaryServiceStub{
		summarizeFn: func(ctx context.Context, unitID string, asOf *time.Time) (*domain.DebtSummary, error) {
			if unitID != "unit-1" {
				t.Fatalf("expected unit-1, got %s", unitID)
			}
			if asOf == nil || !asOf.Equal(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)) {
				t.Fatalf("expected as_of 2025-04-01, got %v", asOf)
			}
			return &domain.DebtSummary{
				UnitID: unitID,
				Status: domain.StatusActive,
				AsOf:   *asOf,
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/units/unit-1/debt-summary?as_of=2025-04-01", nil)
	req = setChiURLParam(req, "id", "unit-1")
	rec := httptest.NewRecorder()

	handler.Summary(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.DebtSummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.AsOf != "2025-04-01" || resp.Status != "ACTIVE" {
		t.Fatalf("unexpected summary: %+v", resp)
	}
}

func TestPaymentHandler_Summary_DefaultsToToday(t *testing.T) {
	handler := NewPaymentHandler(nil, &summaryServiceStub{
		summarizeFn: func(ctx context.Context, unitID string, asOf *time.Time) (*domain.DebtSummary, error) {
			if asOf != nil {
				t.Fatalf("expected nil as_of, got %v", asOf)
			}
			return &domain.DebtSummary{UnitID: unitID, Status: domain.StatusActive, AsOf: time.Now()}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/units/unit-1/debt-summary", nil)
	req = setChiURLParam(req, "id", "unit-1")
	rec := httptest.NewRecorder()

	handler.Summary(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestPaymentHandler_PayoffQuote_BadDate(t *testing.T) {
	handler := NewPaymentHandler(nil, &summaryServiceStub{
		summarizeFn: func(ctx context.Context, unitID string, asOf *time.Time) (*domain.DebtSummary, error) {
			t.Fatal("Summarize should not be called for a malformed date")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/units/unit-1/payoff-quote?settle_on=tomorrow", nil)
	req = setChiURLParam(req, "id", "unit-1")
	rec := httptest.NewRecorder()

	handler.PayoffQuote(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
