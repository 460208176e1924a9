package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/commission/internal/clock"
	ledgerdomain "github.com/smallbiznis/commission/internal/ledger/domain"
	obsmetrics "github.com/smallbiznis/commission/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) ledgerdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("ledger.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) CreateEntry(
	ctx context.Context,
	tx *gorm.DB,
	orgID int64,
	sourceType ledgerdomain.LedgerSourceType,
	sourceID int64,
	currency string,
	occurredAt time.Time,
	metadata map[string]any,
	lines []ledgerdomain.LedgerEntryLine,
) (bool, error) {
	if orgID == 0 {
		return false, ledgerdomain.ErrInvalidOrganization
	}
	if strings.TrimSpace(string(sourceType)) == "" {
		return false, ledgerdomain.ErrInvalidSourceType
	}
	if sourceID == 0 {
		return false, ledgerdomain.ErrInvalidSourceID
	}
	currency = strings.TrimSpace(currency)
	if currency == "" {
		return false, ledgerdomain.ErrInvalidCurrency
	}
	if occurredAt.IsZero() {
		return false, ledgerdomain.ErrInvalidOccurredAt
	}
	if len(lines) < 2 {
		return false, ledgerdomain.ErrInvalidEntryLines
	}

	normalized := make([]ledgerdomain.LedgerEntryLine, 0, len(lines))
	for _, line := range lines {
		if line.AccountID == 0 {
			return false, ledgerdomain.ErrInvalidAccount
		}
		direction, err := normalizeDirection(line.Direction)
		if err != nil {
			return false, err
		}
		if line.Amount.IsNegative() {
			return false, ledgerdomain.ErrInvalidLineAmount
		}
		normalized = append(normalized, ledgerdomain.LedgerEntryLine{
			AccountID: line.AccountID,
			Direction: direction,
			Amount:    line.Amount,
		})
	}
	if err := ledgerdomain.ValidateBalanced(normalized); err != nil {
		return false, err
	}
	if tx == nil {
		tx = s.db
	}

	entryID := s.genID.Generate().Int64()
	now := s.clock.Now().UTC()
	result := tx.WithContext(ctx).Exec(
		`INSERT INTO ledger_entries (
			id, org_id, source_type, source_id, currency, metadata, occurred_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (org_id, source_type, source_id) DO NOTHING`,
		entryID,
		orgID,
		sourceType,
		sourceID,
		currency,
		datatypes.JSONMap(metadata),
		occurredAt.UTC(),
		now,
	)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		s.log.Info("ledger entry already posted",
			zap.String("source_type", string(sourceType)),
			zap.Int64("source_id", sourceID),
		)
		return false, nil
	}

	for _, line := range normalized {
		if err := tx.WithContext(ctx).Exec(
			`INSERT INTO ledger_entry_lines (
				id, ledger_entry_id, account_id, direction, amount, created_at
			) VALUES (?, ?, ?, ?, ?, ?)`,
			s.genID.Generate().Int64(),
			entryID,
			line.AccountID,
			string(line.Direction),
			line.Amount,
			now,
		).Error; err != nil {
			return false, err
		}
	}

	s.obsMetrics.RecordLedgerEntry(ctx, string(sourceType))
	return true, nil
}

func (s *Service) EnsureAccount(ctx context.Context, tx *gorm.DB, orgID int64, code ledgerdomain.LedgerAccountCode, name string) (int64, error) {
	if orgID == 0 {
		return 0, ledgerdomain.ErrInvalidOrganization
	}
	if strings.TrimSpace(string(code)) == "" {
		return 0, ledgerdomain.ErrInvalidAccount
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = string(code)
	}
	if tx == nil {
		tx = s.db
	}

	var accountID int64
	if err := tx.WithContext(ctx).Raw(
		`SELECT id FROM ledger_accounts WHERE org_id = ? AND code = ?`,
		orgID, code,
	).Scan(&accountID).Error; err != nil {
		return 0, err
	}
	if accountID != 0 {
		return accountID, nil
	}

	if err := tx.WithContext(ctx).Exec(
		`INSERT INTO ledger_accounts (id, org_id, code, name, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (org_id, code) DO NOTHING`,
		s.genID.Generate().Int64(), orgID, code, name, s.clock.Now().UTC(),
	).Error; err != nil {
		return 0, err
	}

	if err := tx.WithContext(ctx).Raw(
		`SELECT id FROM ledger_accounts WHERE org_id = ? AND code = ?`,
		orgID, code,
	).Scan(&accountID).Error; err != nil {
		return 0, err
	}
	if accountID == 0 {
		return 0, errors.New("ledger_account_not_found")
	}
	return accountID, nil
}

func (s *Service) PostCommission(ctx context.Context, tx *gorm.DB, posting ledgerdomain.CommissionPosting) error {
	var lines []ledgerdomain.LedgerEntryLine
	add := func(code ledgerdomain.LedgerAccountCode, name string, direction ledgerdomain.LedgerEntryDirection, amount decimal.Decimal) error {
		if amount.IsZero() {
			return nil
		}
		if amount.IsNegative() {
			direction = opposite(direction)
			amount = amount.Neg()
		}
		accountID, err := s.EnsureAccount(ctx, tx, posting.OrgID, code, name)
		if err != nil {
			return err
		}
		lines = append(lines, ledgerdomain.LedgerEntryLine{
			AccountID: accountID,
			Direction: direction,
			Amount:    amount,
		})
		return nil
	}

	if err := add(ledgerdomain.AccountCodeCash, "Cash", ledgerdomain.LedgerEntryDirectionDebit, posting.Cash); err != nil {
		return err
	}

	payables := append([]ledgerdomain.Payable(nil), posting.Payables...)
	sort.Slice(payables, func(i, j int) bool { return payables[i].AgentID < payables[j].AgentID })
	owed := decimal.Zero
	for _, p := range payables {
		owed = owed.Add(p.Amount)
		code := ledgerdomain.AgentPayableCode(p.AgentCode, p.AgentID)
		if err := add(code, "Payable to "+strings.TrimSpace(p.AgentName), ledgerdomain.LedgerEntryDirectionCredit, p.Amount); err != nil {
			return err
		}
	}
	if err := add(ledgerdomain.AccountCodeSuspense, "Suspense", ledgerdomain.LedgerEntryDirectionCredit, posting.Cash.Sub(owed)); err != nil {
		return err
	}

	if len(lines) < 2 {
		s.log.Info("nothing to post", zap.Int64("journal_id", posting.JournalID))
		return nil
	}
	_, err := s.CreateEntry(ctx, tx, posting.OrgID, ledgerdomain.SourceTypeJournalCommit, posting.JournalID,
		posting.Currency, posting.OccurredAt, posting.Metadata, lines)
	return err
}

func (s *Service) ListLines(ctx context.Context, orgID int64, sourceType ledgerdomain.LedgerSourceType, sourceID int64) ([]ledgerdomain.LineView, error) {
	var lines []ledgerdomain.LineView
	err := s.db.WithContext(ctx).Raw(
		`SELECT a.code AS account_code, l.direction, l.amount
		 FROM ledger_entry_lines l
		 JOIN ledger_entries e ON e.id = l.ledger_entry_id
		 JOIN ledger_accounts a ON a.id = l.account_id
		 WHERE e.org_id = ? AND e.source_type = ? AND e.source_id = ?
		 ORDER BY l.direction DESC, a.code ASC`,
		orgID, sourceType, sourceID,
	).Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func opposite(direction ledgerdomain.LedgerEntryDirection) ledgerdomain.LedgerEntryDirection {
	if direction == ledgerdomain.LedgerEntryDirectionDebit {
		return ledgerdomain.LedgerEntryDirectionCredit
	}
	return ledgerdomain.LedgerEntryDirectionDebit
}

func normalizeDirection(direction ledgerdomain.LedgerEntryDirection) (ledgerdomain.LedgerEntryDirection, error) {
	normalized := strings.ToLower(strings.TrimSpace(string(direction)))
	switch normalized {
	case string(ledgerdomain.LedgerEntryDirectionDebit):
		return ledgerdomain.LedgerEntryDirectionDebit, nil
	case string(ledgerdomain.LedgerEntryDirectionCredit):
		return ledgerdomain.LedgerEntryDirectionCredit, nil
	default:
		return "", ledgerdomain.ErrInvalidLineDirection
	}
}
