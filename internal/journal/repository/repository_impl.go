package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/commission/internal/journal/domain"
	"github.com/smallbiznis/commission/pkg/db"
	"github.com/smallbiznis/commission/pkg/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const journalColumns = `id, org_id, producer_id, commission_period_id, status, description, reference,
	cash_amount, source_filename, ingest_report, created_by, committed_at, created_at, updated_at`

const lineItemColumns = `id, org_id, journal_id, position, client_account_id, bkge_class_id, product,
	external_adviser, details, amount, gst, lender_amount, lender_gst, balance, loan_limit, created_at`

func (r *repo) Create(ctx context.Context, conn *gorm.DB, journal *domain.Journal) error {
	return conn.WithContext(ctx).Create(journal).Error
}

func (r *repo) UpdateReport(ctx context.Context, conn *gorm.DB, orgID, id int64, report datatypes.JSONMap) error {
	return conn.WithContext(ctx).Exec(
		`UPDATE journals SET ingest_report = ? WHERE org_id = ? AND id = ?`,
		report, orgID, id,
	).Error
}

func (r *repo) FindByID(ctx context.Context, conn *gorm.DB, orgID, id int64) (*domain.Journal, error) {
	return r.find(ctx, conn, orgID, id, "")
}

func (r *repo) FindByIDForUpdate(ctx context.Context, conn *gorm.DB, orgID, id int64) (*domain.Journal, error) {
	return r.find(ctx, conn, orgID, id, db.ForUpdateSuffix(conn))
}

func (r *repo) find(ctx context.Context, conn *gorm.DB, orgID, id int64, suffix string) (*domain.Journal, error) {
	var j domain.Journal
	err := conn.WithContext(ctx).Raw(
		`SELECT `+journalColumns+` FROM journals WHERE org_id = ? AND id = ?`+suffix,
		orgID, id,
	).Scan(&j).Error
	if err != nil {
		return nil, err
	}
	if j.ID == 0 {
		return nil, nil
	}
	return &j, nil
}

func (r *repo) InsertLineItems(ctx context.Context, conn *gorm.DB, items []*domain.LineItem, batchSize int) error {
	return repository.ProvideStore[domain.LineItem](conn).BatchCreate(ctx, items, batchSize)
}

func (r *repo) ListLineItems(ctx context.Context, conn *gorm.DB, orgID, journalID int64) ([]domain.LineItem, error) {
	var items []domain.LineItem
	err := conn.WithContext(ctx).Raw(
		`SELECT `+lineItemColumns+` FROM journal_line_items
		 WHERE org_id = ? AND journal_id = ? ORDER BY position ASC, id ASC`,
		orgID, journalID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListCommitItems(ctx context.Context, conn *gorm.DB, orgID, journalID int64) ([]domain.CommitItem, error) {
	var items []domain.CommitItem
	err := conn.WithContext(ctx).Raw(
		`SELECT li.id, li.org_id, li.journal_id, li.position, li.client_account_id, li.bkge_class_id,
		        li.product, li.external_adviser, li.details, li.amount, li.gst, li.lender_amount,
		        li.lender_gst, li.balance, li.loan_limit, li.created_at,
		        ca.client_code, ca.deal_id
		 FROM journal_line_items li
		 JOIN client_accounts ca ON ca.id = li.client_account_id AND ca.org_id = li.org_id
		 WHERE li.org_id = ? AND li.journal_id = ?
		 ORDER BY li.position ASC, li.id ASC`,
		orgID, journalID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UnallocatedCodes(ctx context.Context, conn *gorm.DB, orgID, journalID int64) ([]string, error) {
	var codes []string
	err := conn.WithContext(ctx).Raw(
		`SELECT DISTINCT ca.client_code
		 FROM journal_line_items li
		 JOIN client_accounts ca ON ca.id = li.client_account_id AND ca.org_id = li.org_id
		 WHERE li.org_id = ? AND li.journal_id = ? AND ca.deal_id IS NULL
		 ORDER BY ca.client_code ASC`,
		orgID, journalID,
	).Scan(&codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}

func (r *repo) Close(ctx context.Context, conn *gorm.DB, orgID, id, periodID int64, at time.Time) error {
	return conn.WithContext(ctx).Exec(
		`UPDATE journals SET status = ?, commission_period_id = ?, committed_at = ?, updated_at = ?
		 WHERE org_id = ? AND id = ? AND status = ?`,
		domain.StatusClosed, periodID, at, at, orgID, id, domain.StatusOpen,
	).Error
}
