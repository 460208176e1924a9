package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	// ListRolling returns OPEN charges outside periodID, ordered by paying
	// agent, originating period and schedule priority, locked for update.
	ListRolling(ctx context.Context, db *gorm.DB, orgID, periodID int64) ([]RollingCharge, error)
	// ListSchedulesDue returns OPEN schedules covering endDate that have no
	// charge raised for periodID yet.
	ListSchedulesDue(ctx context.Context, db *gorm.DB, orgID, periodID int64, endDate time.Time) ([]ChargeSchedule, error)
	Insert(ctx context.Context, db *gorm.DB, charges []*Charge, batchSize int) error
	UpdateStatus(ctx context.Context, db *gorm.DB, orgID int64, ids []int64, status Status, at time.Time) error
	ListOpen(ctx context.Context, db *gorm.DB, orgID int64) ([]Charge, error)
}
