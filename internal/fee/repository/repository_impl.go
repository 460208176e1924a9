package repository

import (
	"context"

	"github.com/smallbiznis/commission/internal/fee/domain"
	"github.com/smallbiznis/commission/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, fees []*domain.Fee, batchSize int) error {
	return repository.ProvideStore[domain.Fee](db).BatchCreate(ctx, fees, batchSize)
}

func (r *repo) ListByJournal(ctx context.Context, db *gorm.DB, orgID, journalID int64) ([]domain.Fee, error) {
	var items []domain.Fee
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, journal_id, line_item_id, agent_id, split_rule_id, amount, gst, created_at
		 FROM fees WHERE org_id = ? AND journal_id = ? ORDER BY line_item_id ASC, id ASC`,
		orgID, journalID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListByPeriod(ctx context.Context, db *gorm.DB, orgID, periodID int64, filter domain.PeriodFilter) ([]domain.Fee, error) {
	var items []domain.Fee
	stmt := db.WithContext(ctx).
		Table("fees AS f").
		Select("f.id, f.org_id, f.journal_id, f.line_item_id, f.agent_id, f.split_rule_id, f.amount, f.gst, f.created_at").
		Joins("JOIN journals j ON j.id = f.journal_id AND j.org_id = f.org_id").
		Joins("JOIN journal_line_items li ON li.id = f.line_item_id AND li.org_id = f.org_id").
		Where("f.org_id = ? AND j.commission_period_id = ?", orgID, periodID)
	if filter.AgentID != nil {
		stmt = stmt.Where("f.agent_id = ?", *filter.AgentID)
	}
	if filter.ProducerID != nil {
		stmt = stmt.Where("j.producer_id = ?", *filter.ProducerID)
	}
	if filter.BkgeClassID != nil {
		stmt = stmt.Where("li.bkge_class_id = ?", *filter.BkgeClassID)
	}
	if err := stmt.Order("f.agent_id ASC, f.id ASC").Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
