package domain

import "time"

// Event types
const (
	EventTypeFinancingInitialized = "financing.initialized"
	EventTypeRateChanged          = "financing.rate_changed"
	EventTypeAccrualStopped       = "financing.stopped"
	EventTypeAccrualResumed       = "financing.resumed"
	EventTypePaymentRecorded      = "payment.recorded"
	EventTypeDebtSettled          = "debt.settled"
)

// Aggregate types
const (
	AggregateTypeUnit    = "unit"
	AggregateTypePayment = "payment"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}
