package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalCommit records the one commit of a journal. The unique journal id
// stops a second commit at the storage level.
type JournalCommit struct {
	ID                 int64           `json:"id" gorm:"primaryKey"`
	OrgID              int64           `json:"organization_id" gorm:"column:org_id;not null;uniqueIndex:ux_journal_commits_journal,priority:1"`
	JournalID          int64           `json:"journal_id" gorm:"not null;uniqueIndex:ux_journal_commits_journal,priority:2"`
	CommissionPeriodID int64           `json:"commission_period_id" gorm:"not null;index"`
	CommitRef          string          `json:"commit_ref" gorm:"type:text;not null"`
	CommittedBy        int64           `json:"committed_by" gorm:"not null;default:0"`
	FeeCount           int             `json:"fee_count" gorm:"not null;default:0"`
	TotalAmount        decimal.Decimal `json:"total_amount" gorm:"type:numeric(20,4);not null"`
	TotalGST           decimal.Decimal `json:"total_gst" gorm:"column:total_gst;type:numeric(20,4);not null"`
	CreatedAt          time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (JournalCommit) TableName() string { return "journal_commits" }

// Result describes what a commit call did.
type Result struct {
	JournalID     int64           `json:"journal_id"`
	PeriodID      int64           `json:"commission_period_id,omitempty"`
	CommitRef     string          `json:"commit_ref,omitempty"`
	FeeCount      int             `json:"fee_count"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	TotalGST      decimal.Decimal `json:"total_gst"`
	AlreadyClosed bool            `json:"already_closed"`
}
