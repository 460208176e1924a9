package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	accountdomain "github.com/smallbiznis/commission/internal/account/domain"
	"github.com/smallbiznis/commission/internal/clock"
	"github.com/smallbiznis/commission/internal/commit/domain"
	"github.com/smallbiznis/commission/internal/commit/repository"
	dealdomain "github.com/smallbiznis/commission/internal/deal/domain"
	dealrepository "github.com/smallbiznis/commission/internal/deal/repository"
	feedomain "github.com/smallbiznis/commission/internal/fee/domain"
	feerepository "github.com/smallbiznis/commission/internal/fee/repository"
	feeservice "github.com/smallbiznis/commission/internal/fee/service"
	journaldomain "github.com/smallbiznis/commission/internal/journal/domain"
	journalrepository "github.com/smallbiznis/commission/internal/journal/repository"
	ledgerdomain "github.com/smallbiznis/commission/internal/ledger/domain"
	ledgerservice "github.com/smallbiznis/commission/internal/ledger/service"
	"github.com/smallbiznis/commission/internal/orgcontext"
	perioddomain "github.com/smallbiznis/commission/internal/period/domain"
	periodrepository "github.com/smallbiznis/commission/internal/period/repository"
	periodservice "github.com/smallbiznis/commission/internal/period/service"
	producerdomain "github.com/smallbiznis/commission/internal/producer/domain"
	producerrepository "github.com/smallbiznis/commission/internal/producer/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	testOrgID   = 42
	testActorID = 9
	producerID  = 7
	journalID   = 1000
	dealID      = 10
	agentA1     = 1
	agentA2     = 2
	classMXO    = 2
)

type failingLedger struct {
	mock.Mock
	ledgerdomain.Service
}

func (m *failingLedger) PostCommission(ctx context.Context, tx *gorm.DB, posting ledgerdomain.CommissionPosting) error {
	args := m.Called(ctx, tx, posting)
	return args.Error(0)
}

type fixture struct {
	db     *gorm.DB
	svc    domain.Service
	ledger ledgerdomain.Service
	ctx    context.Context
}

func newDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&producerdomain.Producer{},
		&producerdomain.BkgeClass{},
		&accountdomain.ClientAccount{},
		&dealdomain.Agent{},
		&dealdomain.Deal{},
		&dealdomain.SplitRule{},
		&journaldomain.Journal{},
		&journaldomain.LineItem{},
		&feedomain.Fee{},
		&perioddomain.CommissionPeriod{},
		&domain.JournalCommit{},
		&ledgerdomain.LedgerAccount{},
		&ledgerdomain.LedgerEntry{},
		&ledgerdomain.LedgerEntryLine{},
	))

	a1 := int64(agentA1)
	require.NoError(t, db.Create(&producerdomain.Producer{ID: producerID, OrgID: testOrgID, Code: "SFG", Name: "SFG"}).Error)
	require.NoError(t, db.Create(&producerdomain.BkgeClass{ID: classMXO, OrgID: testOrgID, Code: "MXO", Name: "Trail"}).Error)
	require.NoError(t, db.Create(&[]dealdomain.Agent{
		{ID: agentA1, OrgID: testOrgID, Code: "A1", FirstName: "Ann", LastName: "One"},
		{ID: agentA2, OrgID: testOrgID, Code: "A2", FirstName: "Bob", LastName: "Two"},
	}).Error)
	require.NoError(t, db.Create(&dealdomain.Deal{ID: dealID, OrgID: testOrgID, Code: "D", Name: "Deal D", AgentID: agentA2}).Error)
	require.NoError(t, db.Create(&dealdomain.SplitRule{
		ID: 1, OrgID: testOrgID, DealID: dealID, AgentID: &a1, Percentage: decimal.NewFromInt(40),
	}).Error)
	return db
}

func (f *fixture) seedJournal(t *testing.T, cash *decimal.Decimal, allocated bool) {
	t.Helper()
	account := accountdomain.ClientAccount{ID: 500, OrgID: testOrgID, ProducerID: producerID, ClientCode: "100"}
	if allocated {
		d := int64(dealID)
		account.DealID = &d
	}
	require.NoError(t, f.db.Create(&account).Error)

	journal := journaldomain.Journal{ID: journalID, OrgID: testOrgID, ProducerID: producerID, Status: journaldomain.StatusOpen}
	if cash != nil {
		journal.CashAmount = decimal.NewNullDecimal(*cash)
	}
	require.NoError(t, f.db.Create(&journal).Error)
	require.NoError(t, f.db.Create(&journaldomain.LineItem{
		ID:              1,
		OrgID:           testOrgID,
		JournalID:       journalID,
		ClientAccountID: 500,
		BkgeClassID:     classMXO,
		Amount:          decimal.NewFromInt(1000),
		GST:             decimal.NewFromInt(100),
	}).Error)
}

func setupTest(t *testing.T, ledger ledgerdomain.Service) *fixture {
	t.Helper()
	db := newDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zap.NewNop()
	clk := clock.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))

	if ledger == nil {
		ledger = ledgerservice.NewService(ledgerservice.Params{DB: db, Log: log, GenID: node, Clock: clk})
	}
	periods := periodservice.New(periodservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: clk,
		Repo:  periodrepository.Provide(),
	})
	svc := New(Params{
		DB:        db,
		Log:       log,
		GenID:     node,
		Clock:     clk,
		Repo:      repository.Provide(),
		Journals:  journalrepository.Provide(),
		Deals:     dealrepository.Provide(),
		Fees:      feerepository.Provide(),
		Producers: producerrepository.Provide(),
		Periods:   periods,
		Ledger:    ledger,
	})
	return &fixture{
		db:     db,
		svc:    svc,
		ledger: ledger,
		ctx:    orgcontext.WithOrgID(context.Background(), testOrgID),
	}
}

func (f *fixture) journal(t *testing.T) journaldomain.Journal {
	t.Helper()
	var j journaldomain.Journal
	require.NoError(t, f.db.First(&j, journalID).Error)
	return j
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func TestCommitSplitsFeesAndClosesJournal(t *testing.T) {
	f := setupTest(t, nil)
	cash := decimal.NewFromInt(1100)
	f.seedJournal(t, &cash, true)

	result, err := f.svc.Commit(f.ctx, journalID, testActorID)
	require.NoError(t, err)
	assert.False(t, result.AlreadyClosed)
	assert.Equal(t, 2, result.FeeCount)
	assert.NotEmpty(t, result.CommitRef)
	assert.True(t, result.TotalAmount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, result.TotalGST.Equal(decimal.NewFromInt(100)))

	journal := f.journal(t)
	assert.Equal(t, journaldomain.StatusClosed, journal.Status)
	require.NotNil(t, journal.CommissionPeriodID)
	assert.Equal(t, result.PeriodID, *journal.CommissionPeriodID)
	assert.NotNil(t, journal.CommittedAt)

	fees, err := feeservice.New(feeservice.Params{DB: f.db, Log: zap.NewNop(), Repo: feerepository.Provide()}).
		ListByPeriod(f.ctx, result.PeriodID, feedomain.PeriodFilter{})
	require.NoError(t, err)
	require.Len(t, fees, 2)
	byAgent := map[int64]feedomain.Fee{}
	for _, fee := range fees {
		byAgent[fee.AgentID] = fee
	}
	assert.True(t, byAgent[agentA1].Amount.Equal(decimal.NewFromInt(400)))
	assert.True(t, byAgent[agentA1].GST.Equal(decimal.NewFromInt(40)))
	assert.True(t, byAgent[agentA2].Amount.Equal(decimal.NewFromInt(600)))
	assert.True(t, byAgent[agentA2].GST.Equal(decimal.NewFromInt(60)))

	lines, err := f.ledger.ListLines(context.Background(), testOrgID, ledgerdomain.SourceTypeJournalCommit, journalID)
	require.NoError(t, err)
	assert.Len(t, lines, 3)

	stored, err := f.svc.Get(f.ctx, journalID)
	require.NoError(t, err)
	assert.Equal(t, result.CommitRef, stored.CommitRef)
	assert.Equal(t, int64(testActorID), stored.CommittedBy)
}

func TestCommitClosedJournalIsNoop(t *testing.T) {
	f := setupTest(t, nil)
	f.seedJournal(t, nil, true)

	first, err := f.svc.Commit(f.ctx, journalID, testActorID)
	require.NoError(t, err)

	second, err := f.svc.Commit(f.ctx, journalID, testActorID)
	require.NoError(t, err)
	assert.True(t, second.AlreadyClosed)
	assert.Equal(t, first.CommitRef, second.CommitRef)
	assert.Equal(t, first.PeriodID, second.PeriodID)

	assert.Equal(t, int64(2), f.count(t, &feedomain.Fee{}))
	assert.Equal(t, int64(1), f.count(t, &domain.JournalCommit{}))
	assert.Equal(t, journaldomain.StatusClosed, f.journal(t).Status)
}

func TestCommitRejectsUnallocatedAccounts(t *testing.T) {
	f := setupTest(t, nil)
	f.seedJournal(t, nil, false)

	_, err := f.svc.Commit(f.ctx, journalID, testActorID)
	var unallocated *domain.UnallocatedAccountsError
	require.True(t, errors.As(err, &unallocated))
	assert.Equal(t, []string{"100"}, unallocated.Codes)
	assert.Equal(t, journaldomain.StatusOpen, f.journal(t).Status)
	assert.Zero(t, f.count(t, &feedomain.Fee{}))
}

func TestCommitRejectsUnbalancedJournal(t *testing.T) {
	f := setupTest(t, nil)
	cash := decimal.NewFromInt(999)
	f.seedJournal(t, &cash, true)

	_, err := f.svc.Commit(f.ctx, journalID, testActorID)
	assert.ErrorIs(t, err, domain.ErrUnbalancedJournal)
	assert.Equal(t, journaldomain.StatusOpen, f.journal(t).Status)
}

func TestCommitRollsBackOnLedgerFailure(t *testing.T) {
	ledger := &failingLedger{}
	ledger.On("PostCommission", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("ledger down"))
	f := setupTest(t, ledger)
	f.seedJournal(t, nil, true)

	_, err := f.svc.Commit(f.ctx, journalID, testActorID)
	require.Error(t, err)
	ledger.AssertExpectations(t)

	journal := f.journal(t)
	assert.Equal(t, journaldomain.StatusOpen, journal.Status)
	assert.Nil(t, journal.CommissionPeriodID)
	assert.Zero(t, f.count(t, &feedomain.Fee{}))
	assert.Zero(t, f.count(t, &domain.JournalCommit{}))
	assert.Zero(t, f.count(t, &perioddomain.CommissionPeriod{}))
}

func TestCommitConflictsWithExistingCommitRow(t *testing.T) {
	f := setupTest(t, nil)
	f.seedJournal(t, nil, true)
	require.NoError(t, f.db.Create(&domain.JournalCommit{
		ID:                 900,
		OrgID:              testOrgID,
		JournalID:          journalID,
		CommissionPeriodID: 1,
		CommitRef:          "racing-commit",
		TotalAmount:        decimal.Zero,
		TotalGST:           decimal.Zero,
	}).Error)

	_, err := f.svc.Commit(f.ctx, journalID, testActorID)
	assert.ErrorIs(t, err, domain.ErrCommitInProgress)

	assert.Equal(t, journaldomain.StatusOpen, f.journal(t).Status)
	assert.Zero(t, f.count(t, &feedomain.Fee{}))
	assert.Equal(t, int64(1), f.count(t, &domain.JournalCommit{}))
}

func TestCommitUnknownJournal(t *testing.T) {
	f := setupTest(t, nil)
	_, err := f.svc.Commit(f.ctx, 12345, testActorID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.Commit(context.Background(), journalID, testActorID)
	assert.ErrorIs(t, err, domain.ErrInvalidOrganization)
}
