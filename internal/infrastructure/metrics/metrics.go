package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Unit metrics
	UnitsCreated prometheus.Counter

	// Financing metrics
	FinancingInitialized prometheus.Counter
	RateChanges          prometheus.Counter
	AccrualStops         prometheus.Counter
	AccrualResumes       prometheus.Counter

	// Payment metrics
	PaymentsRecorded prometheus.Counter
	PaymentAmount    prometheus.Histogram
	DebtsSettled     prometheus.Counter
	PaymentErrors    *prometheus.CounterVec

	// Lock metrics
	LockContention prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBQueries     *prometheus.CounterVec
	DBDuration    *prometheus.HistogramVec
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec

	// Audit metrics
	AuditLogsCreated *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Unit metrics
		UnitsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "financing_units_created_total",
			Help: "Total number of stock units created",
		}),

		// Financing metrics
		FinancingInitialized: promauto.NewCounter(prometheus.CounterOpts{
			Name: "financing_schedules_initialized_total",
			Help: "Total number of interest schedules initialized",
		}),
		RateChanges: promauto.NewCounter(prometheus.CounterOpts{
			Name: "financing_rate_changes_total",
			Help: "Total number of interest rate changes applied",
		}),
		AccrualStops: promauto.NewCounter(prometheus.CounterOpts{
			Name: "financing_accrual_stops_total",
			Help: "Total number of accrual halts",
		}),
		AccrualResumes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "financing_accrual_resumes_total",
			Help: "Total number of accrual resumes",
		}),

		// Payment metrics
		PaymentsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "financing_payments_recorded_total",
			Help: "Total number of debt payments recorded",
		}),
		PaymentAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "financing_payment_amount",
			Help:    "Payment amounts",
			Buckets: []float64{100, 1000, 10000, 100000, 500000, 1000000, 5000000},
		}),
		DebtsSettled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "financing_debts_settled_total",
			Help: "Total number of debts fully settled",
		}),
		PaymentErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "financing_payment_errors_total",
				Help: "Total number of payment errors by type",
			},
			[]string{"error_type"},
		),

		// Lock metrics
		LockContention: promauto.NewCounter(prometheus.CounterOpts{
			Name: "financing_lock_contention_total",
			Help: "Total number of per-unit lock contention events",
		}),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "financing_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "financing_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "financing_db_queries_total",
				Help: "Total database queries",
			},
			[]string{"operation", "table"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "financing_db_query_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "financing_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "financing_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		// Redis metrics
		RedisOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "financing_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "financing_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Audit metrics
		AuditLogsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "financing_audit_logs_total",
				Help: "Total audit logs created",
			},
			[]string{"action", "status"},
		),
	}
}
