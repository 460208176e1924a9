package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/commission/internal/period/domain"
	"github.com/smallbiznis/commission/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const periodColumns = `id, org_id, end_date, processed, processed_at, created_at, updated_at`

func (r *repo) ListUnprocessed(ctx context.Context, conn *gorm.DB, orgID int64, lock bool) ([]domain.CommissionPeriod, error) {
	suffix := ""
	if lock {
		suffix = db.ForUpdateSuffix(conn)
	}
	var items []domain.CommissionPeriod
	err := conn.WithContext(ctx).Raw(
		`SELECT `+periodColumns+` FROM commission_periods
		 WHERE org_id = ? AND processed = ?
		 ORDER BY end_date ASC`+suffix,
		orgID, false,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindByID(ctx context.Context, conn *gorm.DB, orgID, id int64) (*domain.CommissionPeriod, error) {
	var p domain.CommissionPeriod
	err := conn.WithContext(ctx).Raw(
		`SELECT `+periodColumns+` FROM commission_periods WHERE org_id = ? AND id = ?`,
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

func (r *repo) FindByEndDate(ctx context.Context, conn *gorm.DB, orgID int64, endDate time.Time) (*domain.CommissionPeriod, error) {
	var p domain.CommissionPeriod
	err := conn.WithContext(ctx).
		Where("org_id = ? AND end_date = ?", orgID, endDate).
		Limit(1).
		Find(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) Latest(ctx context.Context, conn *gorm.DB, orgID int64) (*domain.CommissionPeriod, error) {
	var p domain.CommissionPeriod
	err := conn.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("end_date DESC").
		Limit(1).
		Find(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) InsertIfAbsent(ctx context.Context, conn *gorm.DB, period *domain.CommissionPeriod) error {
	return conn.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "org_id"}, {Name: "end_date"}},
			DoNothing: true,
		}).
		Create(period).Error
}

func (r *repo) MarkProcessed(ctx context.Context, conn *gorm.DB, orgID, id int64, at time.Time) error {
	return conn.WithContext(ctx).Exec(
		`UPDATE commission_periods SET processed = ?, processed_at = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		true, at, at, orgID, id,
	).Error
}
