package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// SummaryCacheTTL is the default TTL for the cached debt summary when
	// no override is configured.
	SummaryCacheTTL = 30 * time.Second

	// DefaultPageSize and MaxPageSize bound list queries.
	DefaultPageSize = 50
	MaxPageSize     = 500
)
