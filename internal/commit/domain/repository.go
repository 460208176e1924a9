package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, commit *JournalCommit) error
	FindByJournal(ctx context.Context, db *gorm.DB, orgID, journalID int64) (*JournalCommit, error)
}
