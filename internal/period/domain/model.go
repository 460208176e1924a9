package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// CommissionPeriod is a calendar month of commission, identified by its
// last day. At most one period per organization is unprocessed.
type CommissionPeriod struct {
	ID          int64      `json:"id" gorm:"primaryKey"`
	OrgID       int64      `json:"organization_id" gorm:"column:org_id;not null;uniqueIndex:ux_commission_periods_end,priority:1"`
	EndDate     time.Time  `json:"end_date" gorm:"not null;uniqueIndex:ux_commission_periods_end,priority:2"`
	Processed   bool       `json:"processed" gorm:"not null;default:false"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (CommissionPeriod) TableName() string { return "commission_periods" }

// RolloverResult is the outcome of closing a period.
type RolloverResult struct {
	Closed CommissionPeriod `json:"closed"`
	Opened CommissionPeriod `json:"opened"`
}

// RolloverHook runs inside the rollover transaction after the next period
// exists. An error aborts the whole rollover.
type RolloverHook interface {
	OnPeriodRollover(ctx context.Context, tx *gorm.DB, closed, opened CommissionPeriod) error
}

type Repository interface {
	ListUnprocessed(ctx context.Context, db *gorm.DB, orgID int64, lock bool) ([]CommissionPeriod, error)
	FindByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*CommissionPeriod, error)
	FindByEndDate(ctx context.Context, db *gorm.DB, orgID int64, endDate time.Time) (*CommissionPeriod, error)
	Latest(ctx context.Context, db *gorm.DB, orgID int64) (*CommissionPeriod, error)
	// InsertIfAbsent creates the period unless one with the same end date exists.
	InsertIfAbsent(ctx context.Context, db *gorm.DB, period *CommissionPeriod) error
	MarkProcessed(ctx context.Context, db *gorm.DB, orgID, id int64, at time.Time) error
}

type Service interface {
	GetOrCreateCurrent(ctx context.Context) (*CommissionPeriod, error)
	// CurrentIn is GetOrCreateCurrent inside the caller's transaction.
	CurrentIn(ctx context.Context, tx *gorm.DB) (*CommissionPeriod, error)
	CloseAndCreateNext(ctx context.Context) (*RolloverResult, error)
	Get(ctx context.Context, id int64) (*CommissionPeriod, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
	ErrMultipleOpenPeriods = errors.New("multiple_open_periods")
)
