package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service interface {
	// CreateEntry writes a balanced entry inside tx. A second entry for the
	// same source is ignored and reports false.
	CreateEntry(ctx context.Context, tx *gorm.DB, orgID int64, sourceType LedgerSourceType, sourceID int64, currency string, occurredAt time.Time, metadata map[string]any, lines []LedgerEntryLine) (bool, error)
	// EnsureAccount returns the id of the account with code, creating it.
	EnsureAccount(ctx context.Context, tx *gorm.DB, orgID int64, code LedgerAccountCode, name string) (int64, error)
	// PostCommission debits cash and credits each agent's payable account.
	// Any gap between cash and fees lands in suspense.
	PostCommission(ctx context.Context, tx *gorm.DB, posting CommissionPosting) error
	ListLines(ctx context.Context, orgID int64, sourceType LedgerSourceType, sourceID int64) ([]LineView, error)
}

// LineView is a posted line with its account code.
type LineView struct {
	AccountCode LedgerAccountCode    `json:"account_code"`
	Direction   LedgerEntryDirection `json:"direction"`
	Amount      decimal.Decimal      `json:"amount"`
}

// AgentPayableCode is the liability account for one agent.
func AgentPayableCode(agentCode string, agentID int64) LedgerAccountCode {
	s := strings.ReplaceAll(slug.Make(agentCode), "-", "_")
	if s == "" {
		s = fmt.Sprintf("%d", agentID)
	}
	return LedgerAccountCode(AccountCodeAgentPayablePrefix + s)
}

// ValidateBalanced checks that debits equal credits.
func ValidateBalanced(lines []LedgerEntryLine) error {
	debit, credit := decimal.Zero, decimal.Zero
	for _, line := range lines {
		switch line.Direction {
		case LedgerEntryDirectionDebit:
			debit = debit.Add(line.Amount)
		case LedgerEntryDirectionCredit:
			credit = credit.Add(line.Amount)
		default:
			return ErrInvalidLineDirection
		}
	}
	if !debit.Equal(credit) {
		return ErrUnbalancedEntry
	}
	return nil
}
