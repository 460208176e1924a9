package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fee is the share of one line item owed to one agent. Fees are written
// once by a commit and never updated.
type Fee struct {
	ID          int64           `json:"id" gorm:"primaryKey"`
	OrgID       int64           `json:"organization_id" gorm:"column:org_id;not null;index"`
	JournalID   int64           `json:"journal_id" gorm:"not null;index"`
	LineItemID  int64           `json:"line_item_id" gorm:"not null;index"`
	AgentID     int64           `json:"agent_id" gorm:"not null;index"`
	SplitRuleID *int64          `json:"split_rule_id,omitempty"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric(20,4);not null"`
	GST         decimal.Decimal `json:"gst" gorm:"column:gst;type:numeric(20,4);not null"`
	CreatedAt   time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Fee) TableName() string { return "fees" }

// Total is amount plus GST.
func (f Fee) Total() decimal.Decimal { return f.Amount.Add(f.GST) }
