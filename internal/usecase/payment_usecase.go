package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/motorlot/financing/internal/domain"
	"github.com/motorlot/financing/internal/infrastructure/metrics"
)

// PaymentUseCase applies incoming payments against a unit's debt under the
// interest-first waterfall and detects full settlement.
type PaymentUseCase struct {
	txManager   TransactionManager
	unitRepo    UnitRepository
	periodRepo  PeriodRepository
	paymentRepo PaymentRepository
	outboxRepo  OutboxRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
	locker      UnitLocker
	cache       Cache
	metrics     *metrics.Metrics
}

// NewPaymentUseCase creates a new PaymentUseCase.
func NewPaymentUseCase(
	txManager TransactionManager,
	unitRepo UnitRepository,
	periodRepo PeriodRepository,
	paymentRepo PaymentRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	locker UnitLocker,
	cache Cache,
	metrics *metrics.Metrics,
) *PaymentUseCase {
	return &PaymentUseCase{
		txManager:   txManager,
		unitRepo:    unitRepo,
		periodRepo:  periodRepo,
		paymentRepo: paymentRepo,
		outboxRepo:  outboxRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
		locker:      locker,
		cache:       cache,
		metrics:     metrics,
	}
}

// ApplyPaymentInput represents input for recording a payment.
type ApplyPaymentInput struct {
	UnitID          string
	Amount          decimal.Decimal
	PaymentDate     time.Time
	Method          string
	ReferenceNumber string
	Note            string
}

// ApplyPaymentResult carries the recorded payment, the summary after it,
// and whether this payment settled the debt.
type ApplyPaymentResult struct {
	Payment *domain.DebtPayment
	Summary *domain.DebtSummary
	Settled bool
}

// ApplyPayment splits a payment between outstanding interest and principal
// (interest first), persists it, and transitions the unit to PAID_OFF when
// the remaining principal falls within the settlement epsilon.
func (uc *PaymentUseCase) ApplyPayment(ctx context.Context, input ApplyPaymentInput) (*ApplyPaymentResult, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	release, err := uc.locker.Acquire(ctx, input.UnitID)
	if err != nil {
		noteLockContention(uc.metrics, err)
		return nil, err
	}
	defer release()

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	unit, err := uc.unitRepo.GetByIDForUpdate(txCtx, tx, input.UnitID)
	if err != nil {
		return nil, err
	}

	if !unit.HasFinancing {
		return nil, domain.ErrNoDebt
	}
	if unit.PaidOffAt != nil {
		return nil, domain.ErrAlreadySettled
	}

	periods, err := uc.periodRepo.ListByUnitTx(txCtx, tx, unit.ID)
	if err != nil {
		return nil, err
	}

	payDate := domain.DateOnly(input.PaymentDate)
	open := openPeriod(periods)
	if open != nil && payDate.Before(open.StartDate) {
		return nil, domain.ErrInvalidDate
	}

	outstanding := lifetimeAccrued(periods, payDate).Sub(unit.PaidInterest)
	remaining := remainingPrincipal(unit, periods)

	if input.Amount.GreaterThan(remaining.Add(outstanding).Add(domain.SettlementEpsilon)) {
		return nil, domain.ErrAmountExceedsPayoff
	}

	interestPortion := decimal.Min(input.Amount, outstanding)
	if interestPortion.IsNegative() {
		interestPortion = decimal.Zero
	}
	principalPortion := input.Amount.Sub(interestPortion)

	remainingAfter := remaining.Sub(principalPortion)
	if remainingAfter.IsNegative() {
		remainingAfter = decimal.Zero
	}

	now := time.Now().UTC()
	payment := &domain.DebtPayment{
		ID:                      uc.idGen.Generate(),
		UnitID:                  unit.ID,
		Amount:                  input.Amount,
		PaymentDate:             payDate,
		Method:                  input.Method,
		ReferenceNumber:         input.ReferenceNumber,
		Note:                    input.Note,
		InterestPortion:         interestPortion,
		PrincipalPortion:        principalPortion,
		RemainingPrincipalAfter: remainingAfter,
		CreatedAt:               now,
	}

	if err := payment.Validate(); err != nil {
		return nil, err
	}

	if err := uc.paymentRepo.Create(txCtx, tx, payment); err != nil {
		return nil, err
	}

	unit.PaidInterest = unit.PaidInterest.Add(interestPortion)
	unit.PaidPrincipal = unit.PaidPrincipal.Add(principalPortion)

	settled := remainingAfter.LessThanOrEqual(domain.SettlementEpsilon)
	if settled {
		// Settlement permanently halts accrual: the open period is closed
		// at the payment date and no period may ever open again.
		if open != nil {
			if err := open.Close(payDate); err != nil {
				return nil, err
			}
			if err := uc.periodRepo.Close(txCtx, tx, open); err != nil {
				return nil, err
			}
		}

		unit.PaidOffAt = &payDate
	}

	if err := uc.unitRepo.UpdateFinancingState(txCtx, tx, unit); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   payment.ID,
		AggregateType: domain.AggregateTypePayment,
		EventType:     domain.EventTypePaymentRecorded,
		Payload: map[string]any{
			"payment_id":        payment.ID,
			"unit_id":           unit.ID,
			"amount":            payment.Amount.String(),
			"interest_portion":  payment.InterestPortion.String(),
			"principal_portion": payment.PrincipalPortion.String(),
			"payment_date":      payDate.Format(time.DateOnly),
		},
		CreatedAt: now,
		Published: false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if settled {
		settledEvent := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   unit.ID,
			AggregateType: domain.AggregateTypeUnit,
			EventType:     domain.EventTypeDebtSettled,
			Payload: map[string]any{
				"unit_id":     unit.ID,
				"payment_id":  payment.ID,
				"paid_off_at": payDate.Format(time.DateOnly),
			},
			CreatedAt: now,
			Published: false,
		}
		if err := uc.outboxRepo.Create(txCtx, tx, settledEvent); err != nil {
			return nil, err
		}
	}

	if uc.auditRepo != nil {
		log := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			UserID:       userIDFromContext(ctx),
			Action:       string(domain.AuditActionPaymentApply),
			ResourceType: "payment",
			ResourceID:   payment.ID,
			AfterState:   domain.MarshalState(payment),
			Status:       string(domain.AuditStatusSuccess),
			CreatedAt:    now,
		}
		if err := uc.auditRepo.CreateTx(txCtx, tx, log); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.cache != nil {
		_ = uc.cache.Delete(ctx, summaryCacheKey(unit.ID))
	}

	if uc.metrics != nil {
		uc.metrics.PaymentsRecorded.Inc()
		amt, _ := payment.Amount.Float64()
		uc.metrics.PaymentAmount.Observe(amt)
		if settled {
			uc.metrics.DebtsSettled.Inc()
		}
	}

	summary := projectSummary(unit, periods, payDate)

	return &ApplyPaymentResult{
		Payment: payment,
		Summary: summary,
		Settled: settled,
	}, nil
}

// ListPaymentsInput represents input for listing payments.
type ListPaymentsInput struct {
	UnitID string
	Limit  int
	Offset int
}

// ListPayments returns the unit's payment history, newest first.
func (uc *PaymentUseCase) ListPayments(ctx context.Context, input ListPaymentsInput) ([]*domain.DebtPayment, error) {
	if _, err := uc.unitRepo.GetByID(ctx, input.UnitID); err != nil {
		return nil, err
	}

	if input.Limit <= 0 {
		input.Limit = DefaultPageSize
	}
	if input.Limit > MaxPageSize {
		input.Limit = MaxPageSize
	}

	return uc.paymentRepo.ListByUnit(ctx, input.UnitID, input.Limit, input.Offset)
}
