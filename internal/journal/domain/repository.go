package domain

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, journal *Journal) error
	UpdateReport(ctx context.Context, db *gorm.DB, orgID, id int64, report datatypes.JSONMap) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*Journal, error)
	// FindByIDForUpdate locks the journal row for the rest of the transaction.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, orgID, id int64) (*Journal, error)
	InsertLineItems(ctx context.Context, db *gorm.DB, items []*LineItem, batchSize int) error
	ListLineItems(ctx context.Context, db *gorm.DB, orgID, journalID int64) ([]LineItem, error)
	ListCommitItems(ctx context.Context, db *gorm.DB, orgID, journalID int64) ([]CommitItem, error)
	// UnallocatedCodes lists the account codes on the journal without a deal.
	UnallocatedCodes(ctx context.Context, db *gorm.DB, orgID, journalID int64) ([]string, error)
	Close(ctx context.Context, db *gorm.DB, orgID, id, periodID int64, at time.Time) error
}
