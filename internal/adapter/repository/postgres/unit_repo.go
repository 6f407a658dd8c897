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

const unitColumns = `
	id, stock_number, vin, model,
	base_cost, transport_cost, accessory_cost, other_costs,
	principal_basis, interest_start_date, has_financing,
	accrual_halted, halted_at, paid_off_at,
	paid_interest, paid_principal,
	version, created_at, updated_at`

// UnitRepository implements usecase.UnitRepository.
type UnitRepository struct {
	pool *pgxpool.Pool
}

// NewUnitRepository creates a new UnitRepository.
func NewUnitRepository(pool *pgxpool.Pool) *UnitRepository {
	return &UnitRepository{pool: pool}
}

// Create inserts a new financed unit.
func (r *UnitRepository) Create(ctx context.Context, unit *domain.FinancedUnit) error {
	query := `
		INSERT INTO units (` + unitColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

	_, err := r.pool.Exec(ctx, query,
		unit.ID,
		unit.StockNumber,
		unit.VIN,
		unit.Model,
		decimalToNumeric(unit.BaseCost),
		decimalToNumeric(unit.TransportCost),
		decimalToNumeric(unit.AccessoryCost),
		decimalToNumeric(unit.OtherCosts),
		string(unit.PrincipalBasis),
		timeToPgDate(unit.InterestStartDate),
		unit.HasFinancing,
		unit.AccrualHalted,
		timePtrToPgTimestamptz(unit.HaltedAt),
		timePtrToPgDate(unit.PaidOffAt),
		decimalToNumeric(unit.PaidInterest),
		decimalToNumeric(unit.PaidPrincipal),
		unit.Version,
		timeToPgTimestamptz(unit.CreatedAt),
		timeToPgTimestamptz(unit.UpdatedAt),
	)

	return err
}

// GetByID retrieves a unit by ID.
func (r *UnitRepository) GetByID(ctx context.Context, id string) (*domain.FinancedUnit, error) {
	query := `SELECT ` + unitColumns + ` FROM units WHERE id = $1`

	return scanUnit(r.pool.QueryRow(ctx, query, id))
}

// GetByIDTx retrieves a unit by ID inside a transaction, without locking.
func (r *UnitRepository) GetByIDTx(ctx context.Context, tx usecase.Transaction, id string) (*domain.FinancedUnit, error) {
	pgxTx := tx.(*Tx).PgxTx()
	query := `SELECT ` + unitColumns + ` FROM units WHERE id = $1`

	return scanUnit(pgxTx.QueryRow(ctx, query, id))
}

// GetByIDForUpdate locks the unit row with FOR UPDATE NOWAIT. A row held by
// a concurrent writer surfaces as domain.ErrLockContention.
func (r *UnitRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.FinancedUnit, error) {
	pgxTx := tx.(*Tx).PgxTx()
	query := `SELECT ` + unitColumns + ` FROM units WHERE id = $1 FOR UPDATE NOWAIT`

	unit, err := scanUnit(pgxTx.QueryRow(ctx, query, id))
	if err != nil {
		if isLockNotAvailable(err) {
			return nil, domain.ErrLockContention
		}

		return nil, err
	}

	return unit, nil
}

// UpdateFinancingState persists the accrual flags, cumulative paid amounts,
// principal basis and bumps the version.
func (r *UnitRepository) UpdateFinancingState(ctx context.Context, tx usecase.Transaction, unit *domain.FinancedUnit) error {
	pgxTx := tx.(*Tx).PgxTx()
	query := `
		UPDATE units SET
			principal_basis = $2,
			accrual_halted = $3,
			halted_at = $4,
			paid_off_at = $5,
			paid_interest = $6,
			paid_principal = $7,
			version = version + 1,
			updated_at = now()
		WHERE id = $1`

	tag, err := pgxTx.Exec(ctx, query,
		unit.ID,
		string(unit.PrincipalBasis),
		unit.AccrualHalted,
		timePtrToPgTimestamptz(unit.HaltedAt),
		timePtrToPgDate(unit.PaidOffAt),
		decimalToNumeric(unit.PaidInterest),
		decimalToNumeric(unit.PaidPrincipal),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUnitNotFound
	}

	return nil
}

// UpdateCosts replaces the unit's cost fields.
func (r *UnitRepository) UpdateCosts(ctx context.Context, tx usecase.Transaction, unit *domain.FinancedUnit) error {
	pgxTx := tx.(*Tx).PgxTx()
	query := `
		UPDATE units SET
			base_cost = $2,
			transport_cost = $3,
			accessory_cost = $4,
			other_costs = $5,
			version = version + 1,
			updated_at = now()
		WHERE id = $1`

	tag, err := pgxTx.Exec(ctx, query,
		unit.ID,
		decimalToNumeric(unit.BaseCost),
		decimalToNumeric(unit.TransportCost),
		decimalToNumeric(unit.AccessoryCost),
		decimalToNumeric(unit.OtherCosts),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUnitNotFound
	}

	return nil
}

// List lists units with pagination.
func (r *UnitRepository) List(ctx context.Context, limit, offset int) ([]*domain.FinancedUnit, error) {
	query := `SELECT ` + unitColumns + ` FROM units ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanUnits(rows)
}

// ListFinanced lists every unit with financing enabled.
func (r *UnitRepository) ListFinanced(ctx context.Context) ([]*domain.FinancedUnit, error) {
	query := `SELECT ` + unitColumns + ` FROM units WHERE has_financing ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanUnits(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUnit(row rowScanner) (*domain.FinancedUnit, error) {
	var unit domain.FinancedUnit
	var baseCost, transportCost, accessoryCost, otherCosts pgtype.Numeric
	var paidInterest, paidPrincipal pgtype.Numeric
	var basis string
	var interestStart pgtype.Date
	var haltedAt pgtype.Timestamptz
	var paidOffAt pgtype.Date
	var createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(
		&unit.ID,
		&unit.StockNumber,
		&unit.VIN,
		&unit.Model,
		&baseCost,
		&transportCost,
		&accessoryCost,
		&otherCosts,
		&basis,
		&interestStart,
		&unit.HasFinancing,
		&unit.AccrualHalted,
		&haltedAt,
		&paidOffAt,
		&paidInterest,
		&paidPrincipal,
		&unit.Version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUnitNotFound
		}

		return nil, err
	}

	unit.BaseCost = numericToDecimal(baseCost)
	unit.TransportCost = numericToDecimal(transportCost)
	unit.AccessoryCost = numericToDecimal(accessoryCost)
	unit.OtherCosts = numericToDecimal(otherCosts)
	unit.PaidInterest = numericToDecimal(paidInterest)
	unit.PaidPrincipal = numericToDecimal(paidPrincipal)
	unit.PrincipalBasis = domain.PrincipalBasis(basis)
	unit.InterestStartDate = interestStart.Time.UTC()
	unit.HaltedAt = pgTimestamptzToTimePtr(haltedAt)
	unit.PaidOffAt = pgDateToTimePtr(paidOffAt)
	unit.CreatedAt = createdAt.Time
	unit.UpdatedAt = updatedAt.Time

	return &unit, nil
}

func scanUnits(rows pgx.Rows) ([]*domain.FinancedUnit, error) {
	var units []*domain.FinancedUnit
	for rows.Next() {
		unit, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, unit)
	}

	return units, rows.Err()
}
