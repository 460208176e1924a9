package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindByCode(ctx context.Context, db *gorm.DB, orgID int64, code string) (*Producer, error)
	FindByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*Producer, error)
	ListClasses(ctx context.Context, db *gorm.DB, orgID int64) ([]BkgeClass, error)
}
