package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/commission/internal/charge/domain"
	"github.com/smallbiznis/commission/pkg/db"
	"github.com/smallbiznis/commission/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const chargeColumns = `c.id, c.org_id, c.commission_period_id, c.original_charge_id, c.schedule_id,
	c.paying_agent_id, c.receiving_agent_id, c.total_amount, c.total_gst,
	c.outstanding_amount, c.outstanding_gst, c.status, c.created_at, c.updated_at`

func (r *repo) ListRolling(ctx context.Context, conn *gorm.DB, orgID, periodID int64) ([]domain.RollingCharge, error) {
	var items []domain.RollingCharge
	err := conn.WithContext(ctx).Raw(
		`SELECT `+chargeColumns+`, s.roll_balance, s.priority
		 FROM charges c
		 JOIN charge_schedules s ON s.id = c.schedule_id AND s.org_id = c.org_id
		 WHERE c.org_id = ? AND c.status = ? AND c.commission_period_id <> ?
		 ORDER BY c.paying_agent_id ASC, c.commission_period_id ASC, s.priority ASC, c.id ASC`+db.ForUpdateSuffix(conn),
		orgID, domain.StatusOpen, periodID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListSchedulesDue(ctx context.Context, conn *gorm.DB, orgID, periodID int64, endDate time.Time) ([]domain.ChargeSchedule, error) {
	var items []domain.ChargeSchedule
	err := conn.WithContext(ctx).Raw(
		`SELECT s.id, s.org_id, s.charge_type_id, s.paying_agent_id, s.receiving_agent_id, s.frequency,
		        s.allow_partial_payment, s.roll_balance, s.status, s.priority, s.start_date, s.end_date,
		        s.amount, s.gst
		 FROM charge_schedules s
		 WHERE s.org_id = ? AND s.status = ?
		   AND s.start_date <= ?
		   AND (s.end_date IS NULL OR s.end_date > ?)
		   AND NOT EXISTS (
		     SELECT 1 FROM charges c
		     WHERE c.org_id = s.org_id AND c.schedule_id = s.id
		       AND c.commission_period_id = ? AND c.original_charge_id IS NULL
		   )
		 ORDER BY s.paying_agent_id ASC, s.priority ASC, s.id ASC`,
		orgID, domain.ScheduleStatusOpen, endDate, endDate, periodID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Insert(ctx context.Context, conn *gorm.DB, charges []*domain.Charge, batchSize int) error {
	return repository.ProvideStore[domain.Charge](conn).BatchCreate(ctx, charges, batchSize)
}

func (r *repo) UpdateStatus(ctx context.Context, conn *gorm.DB, orgID int64, ids []int64, status domain.Status, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return conn.WithContext(ctx).Exec(
		`UPDATE charges SET status = ?, updated_at = ? WHERE org_id = ? AND id IN ?`,
		status, at, orgID, ids,
	).Error
}

func (r *repo) ListOpen(ctx context.Context, conn *gorm.DB, orgID int64) ([]domain.Charge, error) {
	var items []domain.Charge
	err := conn.WithContext(ctx).Raw(
		`SELECT `+chargeColumns+`
		 FROM charges c
		 JOIN charge_schedules s ON s.id = c.schedule_id AND s.org_id = c.org_id
		 WHERE c.org_id = ? AND c.status = ?
		 ORDER BY c.paying_agent_id ASC, c.commission_period_id ASC, s.priority ASC, c.id ASC`,
		orgID, domain.StatusOpen,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
