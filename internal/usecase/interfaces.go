package usecase

import (
	"context"
	"time"

	"github.com/motorlot/financing/internal/domain"
)

// UnitRepository defines data access for financed stock units.
type UnitRepository interface {
	Create(ctx context.Context, unit *domain.FinancedUnit) error
	GetByID(ctx context.Context, id string) (*domain.FinancedUnit, error)
	GetByIDTx(ctx context.Context, tx Transaction, id string) (*domain.FinancedUnit, error)
	// GetByIDForUpdate locks the unit row with FOR UPDATE NOWAIT; a held
	// lock surfaces as domain.ErrLockContention.
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.FinancedUnit, error)
	// UpdateFinancingState persists the unit's accrual flags, cumulative
	// paid amounts, principal basis and bumped version.
	UpdateFinancingState(ctx context.Context, tx Transaction, unit *domain.FinancedUnit) error
	UpdateCosts(ctx context.Context, tx Transaction, unit *domain.FinancedUnit) error
	List(ctx context.Context, limit, offset int) ([]*domain.FinancedUnit, error)
	ListFinanced(ctx context.Context) ([]*domain.FinancedUnit, error)
}

// PeriodRepository defines data access for interest periods.
type PeriodRepository interface {
	Create(ctx context.Context, tx Transaction, period *domain.InterestPeriod) error
	// Close persists a period's end date, day count and accrued interest.
	Close(ctx context.Context, tx Transaction, period *domain.InterestPeriod) error
	// GetOpenForUpdate returns the unit's single open period, locked,
	// or domain.ErrNoOpenPeriod.
	GetOpenForUpdate(ctx context.Context, tx Transaction, unitID string) (*domain.InterestPeriod, error)
	CountByUnit(ctx context.Context, tx Transaction, unitID string) (int, error)
	ListByUnit(ctx context.Context, unitID string) ([]*domain.InterestPeriod, error)
	ListByUnitTx(ctx context.Context, tx Transaction, unitID string) ([]*domain.InterestPeriod, error)
}

// PaymentRepository defines data access for debt payments.
type PaymentRepository interface {
	Create(ctx context.Context, tx Transaction, payment *domain.DebtPayment) error
	ListByUnit(ctx context.Context, unitID string, limit, offset int) ([]*domain.DebtPayment, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// UnitLocker serializes mutating operations per financed unit. Acquire
// returns a release func on success and domain.ErrLockContention when the
// lease cannot be taken promptly; operations on different units never
// contend with each other.
type UnitLocker interface {
	Acquire(ctx context.Context, unitID string) (func(), error)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
