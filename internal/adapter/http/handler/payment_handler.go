package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/motorlot/financing/internal/adapter/http/dto"
	"github.com/motorlot/financing/internal/domain"
	"github.com/motorlot/financing/internal/usecase"
)

// PaymentService defines the behavior needed by PaymentHandler.
type PaymentService interface {
	ApplyPayment(ctx context.Context, input usecase.ApplyPaymentInput) (*usecase.ApplyPaymentResult, error)
	ListPayments(ctx context.Context, input usecase.ListPaymentsInput) ([]*domain.DebtPayment, error)
}

// SummaryService defines the behavior needed for debt summaries.
type SummaryService interface {
	Summarize(ctx context.Context, unitID string, asOf *time.Time) (*domain.DebtSummary, error)
}

// PaymentHandler handles payment and debt summary HTTP requests.
type PaymentHandler struct {
	paymentUC PaymentService
	summaryUC SummaryService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentUC PaymentService, summaryUC SummaryService) *PaymentHandler {
	return &PaymentHandler{
		paymentUC: paymentUC,
		summaryUC: summaryUC,
	}
}

// Apply records a payment against a unit's debt.
func (h *PaymentHandler) Apply(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.ApplyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := dto.Validate(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(id)
	if err != nil {
		writeError(w, mapDomainError(err), "invalid request", err.Error())
		return
	}

	result, err := h.paymentUC.ApplyPayment(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to apply payment", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ApplyPaymentFromResult(result))
}

// List returns a unit's payment history.
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	limit := parseIntQuery(r, "limit", 0)
	offset := parseIntQuery(r, "offset", 0)

	payments, err := h.paymentUC.ListPayments(r.Context(), usecase.ListPaymentsInput{
		UnitID: id,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list payments", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListPaymentsResponse{
		Payments: dto.PaymentsFromDomain(payments),
		Total:    int64(len(payments)),
	})
}

// Summary returns the unit's debt summary, optionally as of a given date.
func (h *PaymentHandler) Summary(w http.ResponseWriter, r *http.Request) {
	h.summarize(w, r, r.URL.Query().Get("as_of"))
}

// PayoffQuote returns the full payoff amount for a future settlement date.
func (h *PaymentHandler) PayoffQuote(w http.ResponseWriter, r *http.Request) {
	h.summarize(w, r, r.URL.Query().Get("settle_on"))
}

func (h *PaymentHandler) summarize(w http.ResponseWriter, r *http.Request, rawDate string) {
	id := chi.URLParam(r, "id")

	var asOf *time.Time
	if rawDate != "" {
		t, err := time.Parse(time.DateOnly, rawDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date", rawDate)
			return
		}
		asOf = &t
	}

	summary, err := h.summaryUC.Summarize(r.Context(), id, asOf)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute summary", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SummaryFromDomain(summary))
}
