package domain

import (
	"context"

	"gorm.io/gorm"
)

// PeriodFilter narrows fees listed for a commission period.
type PeriodFilter struct {
	AgentID     *int64
	ProducerID  *int64
	BkgeClassID *int64
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, fees []*Fee, batchSize int) error
	ListByJournal(ctx context.Context, db *gorm.DB, orgID, journalID int64) ([]Fee, error)
	ListByPeriod(ctx context.Context, db *gorm.DB, orgID, periodID int64, filter PeriodFilter) ([]Fee, error)
}
