package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/motorlot/financing/internal/domain"
	"github.com/motorlot/financing/internal/usecase"
)

const periodColumns = `
	id, unit_id, start_date, end_date,
	annual_rate, principal_basis, principal_amount,
	days_count, accrued_interest, note, created_at`

// PeriodRepository implements usecase.PeriodRepository.
type PeriodRepository struct {
	pool *pgxpool.Pool
}

// NewPeriodRepository creates a new PeriodRepository.
func NewPeriodRepository(pool *pgxpool.Pool) *PeriodRepository {
	return &PeriodRepository{pool: pool}
}

// Create inserts a new interest period. The partial unique index on open
// periods turns a double-open into domain.ErrOpenPeriodExists.
func (r *PeriodRepository) Create(ctx context.Context, tx usecase.Transaction, period *domain.InterestPeriod) error {
	pgxTx := tx.(*Tx).PgxTx()
	query := `
		INSERT INTO interest_periods (` + periodColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := pgxTx.Exec(ctx, query,
		period.ID,
		period.UnitID,
		timeToPgDate(period.StartDate),
		timePtrToPgDate(period.EndDate),
		decimalToNumeric(period.AnnualRate),
		string(period.PrincipalBasis),
		decimalToNumeric(period.PrincipalAmount),
		period.DaysCount,
		decimalToNumeric(period.AccruedInterest),
		period.Note,
		timeToPgTimestamptz(period.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrOpenPeriodExists
		}

		return err
	}

	return nil
}

// Close persists a period's end date, day count and accrued interest.
func (r *PeriodRepository) Close(ctx context.Context, tx usecase.Transaction, period *domain.InterestPeriod) error {
	pgxTx := tx.(*Tx).PgxTx()
	query := `
		UPDATE interest_periods SET
			end_date = $2,
			days_count = $3,
			accrued_interest = $4
		WHERE id = $1 AND end_date IS NULL`

	tag, err := pgxTx.Exec(ctx, query,
		period.ID,
		timePtrToPgDate(period.EndDate),
		period.DaysCount,
		decimalToNumeric(period.AccruedInterest),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNoOpenPeriod
	}

	return nil
}

// GetOpenForUpdate returns the unit's single open period, locked for the
// duration of the transaction.
func (r *PeriodRepository) GetOpenForUpdate(ctx context.Context, tx usecase.Transaction, unitID string) (*domain.InterestPeriod, error) {
	pgxTx := tx.(*Tx).PgxTx()
	query := `SELECT ` + periodColumns + `
		FROM interest_periods
		WHERE unit_id = $1 AND end_date IS NULL
		FOR UPDATE NOWAIT`

	period, err := scanPeriod(pgxTx.QueryRow(ctx, query, unitID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoOpenPeriod
		}
		if isLockNotAvailable(err) {
			return nil, domain.ErrLockContention
		}

		return nil, err
	}

	return period, nil
}

// CountByUnit counts all periods ever opened for a unit.
func (r *PeriodRepository) CountByUnit(ctx context.Context, tx usecase.Transaction, unitID string) (int, error) {
	pgxTx := tx.(*Tx).PgxTx()

	var count int
	err := pgxTx.QueryRow(ctx,
		`SELECT count(*) FROM interest_periods WHERE unit_id = $1`, unitID).Scan(&count)

	return count, err
}

// ListByUnit returns the unit's periods in chronological order.
func (r *PeriodRepository) ListByUnit(ctx context.Context, unitID string) ([]*domain.InterestPeriod, error) {
	rows, err := r.pool.Query(ctx, listPeriodsQuery, unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPeriods(rows)
}

// ListByUnitTx is ListByUnit inside a transaction.
func (r *PeriodRepository) ListByUnitTx(ctx context.Context, tx usecase.Transaction, unitID string) ([]*domain.InterestPeriod, error) {
	pgxTx := tx.(*Tx).PgxTx()

	rows, err := pgxTx.Query(ctx, listPeriodsQuery, unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPeriods(rows)
}

const listPeriodsQuery = `SELECT ` + periodColumns + `
	FROM interest_periods
	WHERE unit_id = $1
	ORDER BY start_date, created_at`

func scanPeriod(row rowScanner) (*domain.InterestPeriod, error) {
	var period domain.InterestPeriod
	var startDate, endDate pgtype.Date
	var annualRate, principalAmount, accruedInterest pgtype.Numeric
	var basis string
	var createdAt pgtype.Timestamptz

	err := row.Scan(
		&period.ID,
		&period.UnitID,
		&startDate,
		&endDate,
		&annualRate,
		&basis,
		&principalAmount,
		&period.DaysCount,
		&accruedInterest,
		&period.Note,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	period.StartDate = startDate.Time.UTC()
	period.EndDate = pgDateToTimePtr(endDate)
	period.AnnualRate = numericToDecimal(annualRate)
	period.PrincipalBasis = domain.PrincipalBasis(basis)
	period.PrincipalAmount = numericToDecimal(principalAmount)
	period.AccruedInterest = numericToDecimal(accruedInterest)
	period.CreatedAt = createdAt.Time

	return &period, nil
}

func scanPeriods(rows pgx.Rows) ([]*domain.InterestPeriod, error) {
	var periods []*domain.InterestPeriod
	for rows.Next() {
		period, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, period)
	}

	return periods, rows.Err()
}
