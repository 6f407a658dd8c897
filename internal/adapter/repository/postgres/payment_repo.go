package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/motorlot/financing/internal/domain"
	"github.com/motorlot/financing/internal/usecase"
)

const paymentColumns = `
	id, unit_id, amount, payment_date,
	method, reference_number, note,
	interest_portion, principal_portion, remaining_principal_after,
	created_at`

// PaymentRepository implements usecase.PaymentRepository.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

// Create inserts a new debt payment.
func (r *PaymentRepository) Create(ctx context.Context, tx usecase.Transaction, payment *domain.DebtPayment) error {
	pgxTx := tx.(*Tx).PgxTx()
	query := `
		INSERT INTO debt_payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := pgxTx.Exec(ctx, query,
		payment.ID,
		payment.UnitID,
		decimalToNumeric(payment.Amount),
		timeToPgDate(payment.PaymentDate),
		payment.Method,
		payment.ReferenceNumber,
		payment.Note,
		decimalToNumeric(payment.InterestPortion),
		decimalToNumeric(payment.PrincipalPortion),
		decimalToNumeric(payment.RemainingPrincipalAfter),
		timeToPgTimestamptz(payment.CreatedAt),
	)

	return err
}

// ListByUnit returns the unit's payments, newest first.
func (r *PaymentRepository) ListByUnit(ctx context.Context, unitID string, limit, offset int) ([]*domain.DebtPayment, error) {
	query := `SELECT ` + paymentColumns + `
		FROM debt_payments
		WHERE unit_id = $1
		ORDER BY payment_date DESC, created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, unitID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.DebtPayment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}

	return payments, rows.Err()
}

func scanPayment(row pgx.Rows) (*domain.DebtPayment, error) {
	var payment domain.DebtPayment
	var amount, interestPortion, principalPortion, remainingAfter pgtype.Numeric
	var paymentDate pgtype.Date
	var createdAt pgtype.Timestamptz

	err := row.Scan(
		&payment.ID,
		&payment.UnitID,
		&amount,
		&paymentDate,
		&payment.Method,
		&payment.ReferenceNumber,
		&payment.Note,
		&interestPortion,
		&principalPortion,
		&remainingAfter,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	payment.Amount = numericToDecimal(amount)
	payment.PaymentDate = paymentDate.Time.UTC()
	payment.InterestPortion = numericToDecimal(interestPortion)
	payment.PrincipalPortion = numericToDecimal(principalPortion)
	payment.RemainingPrincipalAfter = numericToDecimal(remainingAfter)
	payment.CreatedAt = createdAt.Time

	return &payment, nil
}
