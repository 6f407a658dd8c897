package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/motorlot/financing/internal/domain"
	"github.com/motorlot/financing/internal/usecase"
)

// MockUnitRepository is a mock implementation of UnitRepository.
type MockUnitRepository struct {
	mu    sync.RWMutex
	units map[string]*domain.FinancedUnit

	CreateFunc               func(ctx context.Context, unit *domain.FinancedUnit) error
	GetByIDFunc              func(ctx context.Context, id string) (*domain.FinancedUnit, error)
	GetByIDForUpdateFunc     func(ctx context.Context, tx usecase.Transaction, id string) (*domain.FinancedUnit, error)
	UpdateFinancingStateFunc func(ctx context.Context, tx usecase.Transaction, unit *domain.FinancedUnit) error
}

func NewMockUnitRepository() *MockUnitRepository {
	return &MockUnitRepository{
		units: make(map[string]*domain.FinancedUnit),
	}
}

func (m *MockUnitRepository) Create(ctx context.Context, unit *domain.FinancedUnit) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, unit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.units[unit.ID] = unit
	return nil
}

func (m *MockUnitRepository) GetByID(ctx context.Context, id string) (*domain.FinancedUnit, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.units[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUnitNotFound
}

func (m *MockUnitRepository) GetByIDTx(ctx context.Context, tx usecase.Transaction, id string) (*domain.FinancedUnit, error) {
	return m.GetByID(ctx, id)
}

func (m *MockUnitRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.FinancedUnit, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockUnitRepository) UpdateFinancingState(ctx context.Context, tx usecase.Transaction, unit *domain.FinancedUnit) error {
	if m.UpdateFinancingStateFunc != nil {
		return m.UpdateFinancingStateFunc(ctx, tx, unit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	unit.Version++
	m.units[unit.ID] = unit
	return nil
}

func (m *MockUnitRepository) UpdateCosts(ctx context.Context, tx usecase.Transaction, unit *domain.FinancedUnit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	unit.Version++
	m.units[unit.ID] = unit
	return nil
}

func (m *MockUnitRepository) List(ctx context.Context, limit, offset int) ([]*domain.FinancedUnit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var units []*domain.FinancedUnit
	for _, u := range m.units {
		units = append(units, u)
	}
	sort.Slice(units, func(i, j int) bool { return units[i].ID < units[j].ID })
	if offset >= len(units) {
		return nil, nil
	}
	units = units[offset:]
	if limit < len(units) {
		units = units[:limit]
	}
	return units, nil
}

func (m *MockUnitRepository) ListFinanced(ctx context.Context) ([]*domain.FinancedUnit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var units []*domain.FinancedUnit
	for _, u := range m.units {
		if u.HasFinancing {
			units = append(units, u)
		}
	}
	sort.Slice(units, func(i, j int) bool { return units[i].ID < units[j].ID })
	return units, nil
}

// MockPeriodRepository is a mock implementation of PeriodRepository.
type MockPeriodRepository struct {
	mu      sync.RWMutex
	periods map[string][]*domain.InterestPeriod

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, period *domain.InterestPeriod) error
	GetOpenForUpdateFunc func(ctx context.Context, tx usecase.Transaction, unitID string) (*domain.InterestPeriod, error)
}

func NewMockPeriodRepository() *MockPeriodRepository {
	return &MockPeriodRepository{
		periods: make(map[string][]*domain.InterestPeriod),
	}
}

func (m *MockPeriodRepository) Create(ctx context.Context, tx usecase.Transaction, period *domain.InterestPeriod) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, period)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.periods[period.UnitID] {
		if p.IsOpen() {
			return domain.ErrOpenPeriodExists
		}
	}
	m.periods[period.UnitID] = append(m.periods[period.UnitID], period)
	return nil
}

func (m *MockPeriodRepository) Close(ctx context.Context, tx usecase.Transaction, period *domain.InterestPeriod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.periods[period.UnitID] {
		if p.ID == period.ID {
			m.periods[period.UnitID][i] = period
			return nil
		}
	}
	return domain.ErrNoOpenPeriod
}

func (m *MockPeriodRepository) GetOpenForUpdate(ctx context.Context, tx usecase.Transaction, unitID string) (*domain.InterestPeriod, error) {
	if m.GetOpenForUpdateFunc != nil {
		return m.GetOpenForUpdateFunc(ctx, tx, unitID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.periods[unitID] {
		if p.IsOpen() {
			return p, nil
		}
	}
	return nil, domain.ErrNoOpenPeriod
}

func (m *MockPeriodRepository) CountByUnit(ctx context.Context, tx usecase.Transaction, unitID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.periods[unitID]), nil
}

func (m *MockPeriodRepository) ListByUnit(ctx context.Context, unitID string) ([]*domain.InterestPeriod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.InterestPeriod, len(m.periods[unitID]))
	copy(out, m.periods[unitID])
	return out, nil
}

func (m *MockPeriodRepository) ListByUnitTx(ctx context.Context, tx usecase.Transaction, unitID string) ([]*domain.InterestPeriod, error) {
	return m.ListByUnit(ctx, unitID)
}

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string][]*domain.DebtPayment

	CreateFunc func(ctx context.Context, tx usecase.Transaction, payment *domain.DebtPayment) error
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[string][]*domain.DebtPayment),
	}
}

func (m *MockPaymentRepository) Create(ctx context.Context, tx usecase.Transaction, payment *domain.DebtPayment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, payment)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.UnitID] = append(m.payments[payment.UnitID], payment)
	return nil
}

func (m *MockPaymentRepository) ListByUnit(ctx context.Context, unitID string, limit, offset int) ([]*domain.DebtPayment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payments := m.payments[unitID]
	if offset >= len(payments) {
		return nil, nil
	}
	payments = payments[offset:]
	if limit < len(payments) {
		payments = payments[:limit]
	}
	out := make([]*domain.DebtPayment, len(payments))
	copy(out, payments)
	return out, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	Events []*domain.OutboxEvent

	CreateFunc func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.Events {
		if !e.Published {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
			return nil
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.Events[:0]
	for _, e := range m.Events {
		if !e.Published || e.CreatedAt.After(before) {
			kept = append(kept, e)
		}
	}
	m.Events = kept
	return nil
}

// MockAuditRepository is a mock implementation of AuditRepository.
type MockAuditRepository struct {
	mu   sync.RWMutex
	Logs []*domain.AuditLog
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, log)
	return nil
}

func (m *MockAuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	return m.Create(ctx, log)
}

func (m *MockAuditRepository) GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.AuditLog
	for _, l := range m.Logs {
		if l.ResourceType == resourceType && l.ResourceID == resourceID {
			out = append(out, l)
		}
	}
	return out, nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	mu           sync.Mutex
	counter      int
	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("id-%d", m.counter)
}

// MockUnitLocker is a mock implementation of UnitLocker.
type MockUnitLocker struct {
	mu       sync.Mutex
	Acquired []string

	AcquireFunc func(ctx context.Context, unitID string) (func(), error)
}

func NewMockUnitLocker() *MockUnitLocker {
	return &MockUnitLocker{}
}

func (m *MockUnitLocker) Acquire(ctx context.Context, unitID string) (func(), error) {
	if m.AcquireFunc != nil {
		return m.AcquireFunc(ctx, unitID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Acquired = append(m.Acquired, unitID)
	return func() {}, nil
}
