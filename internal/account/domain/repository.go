package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*ClientAccount, error)
	FindByCodes(ctx context.Context, db *gorm.DB, orgID, producerID int64, codes []string) ([]ClientAccount, error)
	// InsertMissing inserts accounts, skipping rows that already exist.
	InsertMissing(ctx context.Context, db *gorm.DB, accounts []ClientAccount, batchSize int) error
	UpdateDeal(ctx context.Context, db *gorm.DB, account *ClientAccount) error
	ListUnallocated(ctx context.Context, db *gorm.DB, orgID int64, producerID *int64) ([]ClientAccount, error)
}
