package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// LedgerEntryDirection represents debit or credit postings.
type LedgerEntryDirection string

const (
	LedgerEntryDirectionDebit  LedgerEntryDirection = "debit"
	LedgerEntryDirectionCredit LedgerEntryDirection = "credit"
)

type LedgerSourceType string

const (
	SourceTypeJournalCommit LedgerSourceType = "journal_commit" // fees split from a committed journal
)

type LedgerAccountCode string

const (
	// Assets
	AccountCodeCash LedgerAccountCode = "cash"

	// Liabilities
	AccountCodeAgentPayablePrefix = "agent_payable_"

	// Clearing
	AccountCodeSuspense LedgerAccountCode = "suspense"
)

// LedgerAccount defines a chart-of-accounts entry.
type LedgerAccount struct {
	ID        int64             `gorm:"primaryKey"`
	OrgID     int64             `gorm:"column:org_id;not null;index;uniqueIndex:ux_ledger_accounts_org_code,priority:1"`
	Code      LedgerAccountCode `gorm:"type:text;not null;uniqueIndex:ux_ledger_accounts_org_code,priority:2"`
	Name      string            `gorm:"type:text;not null"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (LedgerAccount) TableName() string { return "ledger_accounts" }

// LedgerEntry captures the immutable header for a financial event. One
// source produces at most one entry.
type LedgerEntry struct {
	ID         int64             `gorm:"primaryKey"`
	OrgID      int64             `gorm:"column:org_id;not null;index;uniqueIndex:ux_ledger_entries_source,priority:1"`
	SourceType LedgerSourceType  `gorm:"type:text;not null;uniqueIndex:ux_ledger_entries_source,priority:2"`
	SourceID   int64             `gorm:"not null;uniqueIndex:ux_ledger_entries_source,priority:3"`
	Currency   string            `gorm:"type:text;not null"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb"`
	OccurredAt time.Time         `gorm:"not null"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (LedgerEntry) TableName() string { return "ledger_entries" }

// LedgerEntryLine is a double-entry posting line.
type LedgerEntryLine struct {
	ID            int64                `gorm:"primaryKey"`
	LedgerEntryID int64                `gorm:"not null;index"`
	AccountID     int64                `gorm:"not null;index"`
	Direction     LedgerEntryDirection `gorm:"type:text;not null"`
	Amount        decimal.Decimal      `gorm:"type:numeric(20,4);not null"`
	CreatedAt     time.Time            `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (LedgerEntryLine) TableName() string { return "ledger_entry_lines" }

// Payable is the total of one agent's fees in a posting.
type Payable struct {
	AgentID   int64
	AgentCode string
	AgentName string
	Amount    decimal.Decimal
}

// CommissionPosting is what a journal commit hands to the ledger.
type CommissionPosting struct {
	OrgID      int64
	JournalID  int64
	Currency   string
	OccurredAt time.Time
	// Cash is the total received from the producer.
	Cash     decimal.Decimal
	Payables []Payable
	Metadata map[string]any
}
