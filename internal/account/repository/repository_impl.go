package repository

import (
	"context"

	"github.com/smallbiznis/commission/internal/account/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const accountColumns = `id, org_id, producer_id, client_code, name, deal_id, created_by, updated_by, created_at, updated_at`

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*domain.ClientAccount, error) {
	var a domain.ClientAccount
	err := db.WithContext(ctx).Raw(
		`SELECT `+accountColumns+` FROM client_accounts WHERE org_id = ? AND id = ?`,
		orgID, id,
	).Scan(&a).Error
	if err != nil {
		return nil, err
	}
	if a.ID == 0 {
		return nil, nil
	}
	return &a, nil
}

func (r *repo) FindByCodes(ctx context.Context, db *gorm.DB, orgID, producerID int64, codes []string) ([]domain.ClientAccount, error) {
	var items []domain.ClientAccount
	if len(codes) == 0 {
		return items, nil
	}
	err := db.WithContext(ctx).Raw(
		`SELECT `+accountColumns+` FROM client_accounts
		 WHERE org_id = ? AND producer_id = ? AND client_code IN ?`,
		orgID, producerID, codes,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) InsertMissing(ctx context.Context, db *gorm.DB, accounts []domain.ClientAccount, batchSize int) error {
	if len(accounts) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = len(accounts)
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "org_id"}, {Name: "producer_id"}, {Name: "client_code"}},
			DoNothing: true,
		}).
		CreateInBatches(accounts, batchSize).Error
}

func (r *repo) UpdateDeal(ctx context.Context, db *gorm.DB, account *domain.ClientAccount) error {
	if account == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE client_accounts SET deal_id = ?, updated_by = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		account.DealID, account.UpdatedBy, account.UpdatedAt, account.OrgID, account.ID,
	).Error
}

func (r *repo) ListUnallocated(ctx context.Context, db *gorm.DB, orgID int64, producerID *int64) ([]domain.ClientAccount, error) {
	var items []domain.ClientAccount
	stmt := db.WithContext(ctx).
		Model(&domain.ClientAccount{}).
		Where("org_id = ? AND deal_id IS NULL", orgID)
	if producerID != nil {
		stmt = stmt.Where("producer_id = ?", *producerID)
	}
	if err := stmt.Order("producer_id ASC, client_code ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
