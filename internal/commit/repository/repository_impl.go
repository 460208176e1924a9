package repository

import (
	"context"

	"github.com/smallbiznis/commission/internal/commit/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, commit *domain.JournalCommit) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO journal_commits (
			id, org_id, journal_id, commission_period_id, commit_ref, committed_by,
			fee_count, total_amount, total_gst, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		commit.ID,
		commit.OrgID,
		commit.JournalID,
		commit.CommissionPeriodID,
		commit.CommitRef,
		commit.CommittedBy,
		commit.FeeCount,
		commit.TotalAmount,
		commit.TotalGST,
		commit.CreatedAt,
	).Error
}

func (r *repo) FindByJournal(ctx context.Context, db *gorm.DB, orgID, journalID int64) (*domain.JournalCommit, error) {
	var commit domain.JournalCommit
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, journal_id, commission_period_id, commit_ref, committed_by,
		        fee_count, total_amount, total_gst, created_at
		 FROM journal_commits
		 WHERE org_id = ? AND journal_id = ?`,
		orgID, journalID,
	).Scan(&commit).Error
	if err != nil {
		return nil, err
	}
	if commit.ID == 0 {
		return nil, nil
	}
	return &commit, nil
}
