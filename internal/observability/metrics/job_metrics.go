package metrics

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const (
	JobJournalIngest  = "journal_ingest"
	JobJournalCommit  = "journal_commit"
	JobPeriodRollover = "period_rollover"
)

const (
	JobReasonDeadlineExceeded     = "deadline_exceeded"
	JobReasonDBLockTimeout        = "db_lock_timeout"
	JobReasonSerializationFailure = "serialization_failure"
	JobReasonUniqueViolation      = "unique_violation"
	JobReasonBusinessRule         = "business_rule"
	JobReasonUnknown              = "unknown"
)

// BusinessRuleError marks errors that come from domain validation rather
// than infrastructure. Domain error types implement it to be classified as
// business_rule.
type BusinessRuleError interface {
	error
	BusinessRule() bool
}

// JobMetrics tracks the batch operations of the commission core: ingest,
// commit and period rollover.
type JobMetrics struct {
	runs      *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	errors    *prometheus.CounterVec
	processed *prometheus.CounterVec
	lockWait  *prometheus.HistogramVec
}

var (
	jobMetricsOnce sync.Once
	jobMetrics     *JobMetrics
)

// Jobs returns the process-wide job metrics registered on the default
// registerer.
func Jobs(cfg Config) *JobMetrics {
	jobMetricsOnce.Do(func() {
		jobMetrics = NewJobMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return jobMetrics
}

func NewJobMetrics(registerer prometheus.Registerer, cfg Config) *JobMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "commission"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{"service": serviceName, "env": environment}

	m := &JobMetrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "commission_job_runs_total",
			Help:        "Commission job runs by job and outcome.",
			ConstLabels: constLabels,
		}, []string{"job", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "commission_job_duration_seconds",
			Help:        "Commission job latency.",
			Buckets:     []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			ConstLabels: constLabels,
		}, []string{"job"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "commission_job_errors_total",
			Help:        "Commission job errors by low-cardinality reason.",
			ConstLabels: constLabels,
		}, []string{"job", "reason"}),
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "commission_job_items_processed_total",
			Help:        "Items processed by commission jobs.",
			ConstLabels: constLabels,
		}, []string{"job", "resource"}),
		lockWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "commission_db_lock_wait_seconds",
			Help:        "Wait time for SELECT FOR UPDATE row locks.",
			Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			ConstLabels: constLabels,
		}, []string{"resource"}),
	}
	registerer.MustRegister(m.runs, m.duration, m.errors, m.processed, m.lockWait)
	return m
}

// Observe records one job run. It is meant to be deferred with a pointer to
// the named error result.
func (m *JobMetrics) Observe(job string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(job).Observe(time.Since(start).Seconds())
	if err != nil {
		m.runs.WithLabelValues(job, "error").Inc()
		m.errors.WithLabelValues(job, ClassifyJobReason(err)).Inc()
		return
	}
	m.runs.WithLabelValues(job, "success").Inc()
}

// AddProcessed adds count processed items of resource for job.
func (m *JobMetrics) AddProcessed(job, resource string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.processed.WithLabelValues(job, resource).Add(float64(count))
}

// ObserveLockWait records how long a row lock took to acquire.
func (m *JobMetrics) ObserveLockWait(resource string, d time.Duration) {
	if m == nil {
		return
	}
	m.lockWait.WithLabelValues(resource).Observe(d.Seconds())
}

// ClassifyJobReason maps an error to a bounded reason label.
func ClassifyJobReason(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return JobReasonDeadlineExceeded
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "55P03":
			return JobReasonDBLockTimeout
		case "40001":
			return JobReasonSerializationFailure
		case "23505":
			return JobReasonUniqueViolation
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return JobReasonUniqueViolation
	}
	var rule BusinessRuleError
	if errors.As(err, &rule) && rule.BusinessRule() {
		return JobReasonBusinessRule
	}
	return JobReasonUnknown
}
