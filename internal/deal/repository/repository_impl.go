package repository

import (
	"context"

	"github.com/smallbiznis/commission/internal/deal/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*domain.Deal, error) {
	var d domain.Deal
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, code, name, agent_id, created_at
		 FROM deals WHERE org_id = ? AND id = ?`,
		orgID, id,
	).Scan(&d).Error
	if err != nil {
		return nil, err
	}
	if d.ID == 0 {
		return nil, nil
	}
	return &d, nil
}

func (r *repo) LoadWithRules(ctx context.Context, db *gorm.DB, orgID int64, dealIDs []int64) (map[int64]*domain.DealWithRules, error) {
	out := make(map[int64]*domain.DealWithRules, len(dealIDs))
	if len(dealIDs) == 0 {
		return out, nil
	}

	var deals []domain.Deal
	if err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, code, name, agent_id, created_at
		 FROM deals WHERE org_id = ? AND id IN ?`,
		orgID, dealIDs,
	).Scan(&deals).Error; err != nil {
		return nil, err
	}
	for _, d := range deals {
		out[d.ID] = &domain.DealWithRules{Deal: d}
	}

	var rules []domain.SplitRule
	if err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, deal_id, agent_id, producer_filter_id, bkge_class_filter_id, percentage, position
		 FROM deal_splits WHERE org_id = ? AND deal_id IN ?
		 ORDER BY deal_id ASC, position ASC, id ASC`,
		orgID, dealIDs,
	).Scan(&rules).Error; err != nil {
		return nil, err
	}
	for _, rule := range rules {
		if d, ok := out[rule.DealID]; ok {
			d.Rules = append(d.Rules, rule)
		}
	}
	return out, nil
}

func (r *repo) FindAgents(ctx context.Context, db *gorm.DB, orgID int64, ids []int64) (map[int64]domain.Agent, error) {
	out := make(map[int64]domain.Agent, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var agents []domain.Agent
	if err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, code, first_name, last_name, is_gst_exempt, is_external, created_at
		 FROM agents WHERE org_id = ? AND id IN ?`,
		orgID, ids,
	).Scan(&agents).Error; err != nil {
		return nil, err
	}
	for _, a := range agents {
		out[a.ID] = a
	}
	return out, nil
}
