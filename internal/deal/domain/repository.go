package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("deal_not_found")

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*Deal, error)
	// LoadWithRules returns the deals with their split rules keyed by deal id.
	LoadWithRules(ctx context.Context, db *gorm.DB, orgID int64, dealIDs []int64) (map[int64]*DealWithRules, error)
	FindAgents(ctx context.Context, db *gorm.DB, orgID int64, ids []int64) (map[int64]Agent, error)
}
