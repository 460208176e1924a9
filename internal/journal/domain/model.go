package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Status is the lifecycle state of a journal.
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

// Journal is one uploaded producer statement.
type Journal struct {
	ID                 int64               `json:"id" gorm:"primaryKey"`
	OrgID              int64               `json:"organization_id" gorm:"column:org_id;not null;index"`
	ProducerID         int64               `json:"producer_id" gorm:"not null;index"`
	CommissionPeriodID *int64              `json:"commission_period_id,omitempty" gorm:"index"`
	Status             Status              `json:"status" gorm:"type:text;not null;default:'OPEN'"`
	Description        string              `json:"description" gorm:"type:text;not null;default:''"`
	Reference          string              `json:"reference" gorm:"type:text;not null;default:''"`
	CashAmount         decimal.NullDecimal `json:"cash_amount" gorm:"type:numeric(20,4)"`
	SourceFilename     string              `json:"source_filename" gorm:"type:text;not null;default:''"`
	IngestReport       datatypes.JSONMap   `json:"ingest_report,omitempty" gorm:"type:jsonb"`
	CreatedBy          int64               `json:"created_by" gorm:"not null;default:0"`
	CommittedAt        *time.Time          `json:"committed_at,omitempty"`
	CreatedAt          time.Time           `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt          time.Time           `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Journal) TableName() string { return "journals" }

// LineItem is one canonical row of a journal, bound to a client account and
// brokerage class.
type LineItem struct {
	ID              int64           `json:"id" gorm:"primaryKey"`
	OrgID           int64           `json:"organization_id" gorm:"column:org_id;not null;index"`
	JournalID       int64           `json:"journal_id" gorm:"not null;index"`
	Position        int             `json:"position" gorm:"not null;default:0"`
	ClientAccountID int64           `json:"client_account_id" gorm:"not null;index"`
	BkgeClassID     int64           `json:"bkge_class_id" gorm:"not null"`
	Product         string          `json:"product" gorm:"type:text;not null;default:''"`
	ExternalAdviser string          `json:"external_adviser" gorm:"type:text;not null;default:''"`
	Details         string          `json:"details" gorm:"type:text;not null;default:''"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:numeric(20,4);not null"`
	GST             decimal.Decimal `json:"gst" gorm:"column:gst;type:numeric(20,4);not null"`
	LenderAmount    decimal.Decimal `json:"lender_amount" gorm:"type:numeric(20,4);not null"`
	LenderGST       decimal.Decimal `json:"lender_gst" gorm:"column:lender_gst;type:numeric(20,4);not null"`
	Balance         decimal.Decimal `json:"balance" gorm:"type:numeric(20,4);not null"`
	Limit           decimal.Decimal `json:"limit" gorm:"column:loan_limit;type:numeric(20,4);not null"`
	CreatedAt       time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (LineItem) TableName() string { return "journal_line_items" }

// Total is amount plus GST.
func (l LineItem) Total() decimal.Decimal { return l.Amount.Add(l.GST) }

// CommitItem is a line item joined with what the commit needs to split it.
type CommitItem struct {
	LineItem
	ClientCode string `json:"client_code"`
	DealID     *int64 `json:"deal_id,omitempty"`
}
