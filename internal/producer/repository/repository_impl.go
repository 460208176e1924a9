package repository

import (
	"context"

	"github.com/smallbiznis/commission/internal/producer/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, orgID int64, code string) (*domain.Producer, error) {
	var p domain.Producer
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, code, name, created_at, updated_at
		 FROM producers WHERE org_id = ? AND code = ?`,
		orgID, code,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*domain.Producer, error) {
	var p domain.Producer
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, code, name, created_at, updated_at
		 FROM producers WHERE org_id = ? AND id = ?`,
		orgID, id,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) ListClasses(ctx context.Context, db *gorm.DB, orgID int64) ([]domain.BkgeClass, error) {
	var items []domain.BkgeClass
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, code, name, created_at
		 FROM bkge_classes WHERE org_id = ? ORDER BY code ASC`,
		orgID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
