package domain

import (
	"encoding/json"
	"time"
)

// AuditLog records one back-office action against a financing resource.
type AuditLog struct {
	ID           string
	UserID       string
	Action       string
	ResourceType string
	ResourceID   string
	RequestID    string
	BeforeState  JSON
	AfterState   JSON
	Status       string
	ErrorMessage string
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	AuditActionUnitCreate      AuditAction = "unit.create"
	AuditActionUnitUpdateCosts AuditAction = "unit.update_costs"
	AuditActionFinancingInit   AuditAction = "financing.initialize"
	AuditActionRateChange      AuditAction = "financing.change_rate"
	AuditActionAccrualStop     AuditAction = "financing.stop"
	AuditActionAccrualResume   AuditAction = "financing.resume"
	AuditActionPaymentApply    AuditAction = "payment.apply"
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
)

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}
