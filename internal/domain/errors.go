package domain

import "errors"

var (
	// Unit errors
	ErrUnitNotFound = errors.New("unit not found")
	ErrNegativeCost = errors.New("cost fields must be non-negative")
	ErrInvalidBasis = errors.New("unknown principal basis")
	ErrNoDebt       = errors.New("unit carries no financing")

	// Interest period errors
	ErrAlreadyInitialized = errors.New("interest schedule already initialized")
	ErrNoOpenPeriod       = errors.New("no open interest period")
	ErrOpenPeriodExists   = errors.New("unit already has an open interest period")
	ErrPeriodOverlap      = errors.New("interest periods overlap")
	ErrInvalidDate        = errors.New("date precedes the period it must follow")
	ErrInvalidRate        = errors.New("annual rate must be between 0 and 100")
	ErrAccrualNotHalted   = errors.New("accrual is not halted")

	// Payment errors
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrAlreadySettled      = errors.New("debt is already settled")
	ErrAlreadyPaidOff      = errors.New("unit is paid off")
	ErrAmountExceedsPayoff = errors.New("payment exceeds total payoff amount")
	ErrPortionMismatch     = errors.New("payment portions do not sum to amount")

	// ErrLockContention is the only retryable error: the per-unit lock
	// could not be acquired promptly.
	ErrLockContention = errors.New("unit is locked by another operation")

	// Auth errors
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)
