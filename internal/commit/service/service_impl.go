package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/commission/internal/clock"
	"github.com/smallbiznis/commission/internal/commit/domain"
	"github.com/smallbiznis/commission/internal/config"
	dealdomain "github.com/smallbiznis/commission/internal/deal/domain"
	feedomain "github.com/smallbiznis/commission/internal/fee/domain"
	journaldomain "github.com/smallbiznis/commission/internal/journal/domain"
	ledgerdomain "github.com/smallbiznis/commission/internal/ledger/domain"
	"github.com/smallbiznis/commission/internal/lock"
	obsmetrics "github.com/smallbiznis/commission/internal/observability/metrics"
	"github.com/smallbiznis/commission/internal/orgcontext"
	perioddomain "github.com/smallbiznis/commission/internal/period/domain"
	producerdomain "github.com/smallbiznis/commission/internal/producer/domain"
	"github.com/smallbiznis/commission/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	Journals   journaldomain.Repository
	Deals      dealdomain.Repository
	Fees       feedomain.Repository
	Producers  producerdomain.Repository
	Periods    perioddomain.Service
	Ledger     ledgerdomain.Service
	Locker     *lock.Locker                   `optional:"true"`
	Config     *config.CommissionConfigHolder `optional:"true"`
	ObsMetrics *obsmetrics.Metrics            `optional:"true"`
	JobMetrics *obsmetrics.JobMetrics         `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	journals   journaldomain.Repository
	deals      dealdomain.Repository
	fees       feedomain.Repository
	producers  producerdomain.Repository
	periods    perioddomain.Service
	ledger     ledgerdomain.Service
	locker     *lock.Locker
	config     *config.CommissionConfigHolder
	obsMetrics *obsmetrics.Metrics
	jobMetrics *obsmetrics.JobMetrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("commit.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		journals:   p.Journals,
		deals:      p.Deals,
		fees:       p.Fees,
		producers:  p.Producers,
		periods:    p.Periods,
		ledger:     p.Ledger,
		locker:     p.Locker,
		config:     p.Config,
		obsMetrics: p.ObsMetrics,
		jobMetrics: p.JobMetrics,
	}
}

func (s *Service) Commit(ctx context.Context, journalID, actorID int64) (result *domain.Result, err error) {
	start := time.Now()
	defer func() { s.jobMetrics.Observe(obsmetrics.JobJournalCommit, start, err) }()

	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}
	if journalID == 0 {
		return nil, domain.ErrInvalidID
	}
	cfg := s.commissionConfig()

	var producerID int64
	err = s.locker.WithLock(ctx, lock.JournalCommitKey(orgID.Int64(), journalID), cfg.CommitLockTTL, func(ctx context.Context) error {
		var err error
		result, producerID, err = s.commit(ctx, orgID.Int64(), journalID, actorID, cfg)
		return err
	})
	if errors.Is(err, lock.ErrLockHeld) {
		err = domain.ErrCommitInProgress
	}
	if err != nil {
		s.log.Warn("journal commit failed",
			zap.Int64("org_id", orgID.Int64()),
			zap.Int64("journal_id", journalID),
			zap.Error(err),
		)
		return nil, err
	}
	if result.AlreadyClosed {
		s.log.Info("journal already committed", zap.Int64("journal_id", journalID))
		return result, nil
	}

	s.obsMetrics.RecordJournalCommitted(ctx, s.producerCode(ctx, orgID.Int64(), producerID), result.FeeCount)
	s.jobMetrics.AddProcessed(obsmetrics.JobJournalCommit, "fees", result.FeeCount)
	s.log.Info("journal committed",
		zap.Int64("org_id", orgID.Int64()),
		zap.Int64("journal_id", journalID),
		zap.Int64("commission_period_id", result.PeriodID),
		zap.String("commit_ref", result.CommitRef),
		zap.Int("fees", result.FeeCount),
	)
	return result, nil
}

func (s *Service) commit(ctx context.Context, orgID, journalID, actorID int64, cfg config.CommissionConfig) (*domain.Result, int64, error) {
	var (
		result     *domain.Result
		producerID int64
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lockStart := time.Now()
		journal, err := s.journals.FindByIDForUpdate(ctx, tx, orgID, journalID)
		if err != nil {
			return err
		}
		if journal == nil {
			return domain.ErrNotFound
		}
		s.jobMetrics.ObserveLockWait("journals", time.Since(lockStart))
		producerID = journal.ProducerID

		if journal.Status != journaldomain.StatusOpen {
			result, err = s.closedResult(ctx, tx, journal)
			return err
		}

		codes, err := s.journals.UnallocatedCodes(ctx, tx, orgID, journalID)
		if err != nil {
			return err
		}
		if len(codes) > 0 {
			return &domain.UnallocatedAccountsError{Codes: codes}
		}

		items, err := s.journals.ListCommitItems(ctx, tx, orgID, journalID)
		if err != nil {
			return err
		}
		cash := decimal.Zero
		for _, item := range items {
			cash = cash.Add(item.Total())
		}
		if journal.CashAmount.Valid {
			if !journal.CashAmount.Decimal.Equal(cash) {
				return domain.ErrUnbalancedJournal
			}
			cash = journal.CashAmount.Decimal
		}

		period, err := s.periods.CurrentIn(ctx, tx)
		if err != nil {
			return err
		}

		fees, err := s.split(ctx, tx, orgID, journal, items, cfg)
		if err != nil {
			return err
		}
		if err := s.fees.Insert(ctx, tx, fees, cfg.BatchSize); err != nil {
			return err
		}

		now := s.clock.Now()
		commit := &domain.JournalCommit{
			ID:                 s.genID.Generate().Int64(),
			OrgID:              orgID,
			JournalID:          journalID,
			CommissionPeriodID: period.ID,
			CommitRef:          ulid.Make().String(),
			CommittedBy:        actorID,
			FeeCount:           len(fees),
			TotalAmount:        decimal.Zero,
			TotalGST:           decimal.Zero,
			CreatedAt:          now,
		}
		for _, f := range fees {
			commit.TotalAmount = commit.TotalAmount.Add(f.Amount)
			commit.TotalGST = commit.TotalGST.Add(f.GST)
		}
		if err := s.repo.Insert(ctx, tx, commit); err != nil {
			// Another commit of this journal got there first.
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrCommitInProgress
			}
			return err
		}

		payables, err := s.payables(ctx, tx, orgID, fees)
		if err != nil {
			return err
		}
		if err := s.ledger.PostCommission(ctx, tx, ledgerdomain.CommissionPosting{
			OrgID:      orgID,
			JournalID:  journalID,
			Currency:   cfg.Currency,
			OccurredAt: now,
			Cash:       cash,
			Payables:   payables,
			Metadata: map[string]any{
				"commit_ref":           commit.CommitRef,
				"commission_period_id": period.ID,
			},
		}); err != nil {
			return err
		}

		if err := s.journals.Close(ctx, tx, orgID, journalID, period.ID, now); err != nil {
			return err
		}

		result = &domain.Result{
			JournalID:   journalID,
			PeriodID:    period.ID,
			CommitRef:   commit.CommitRef,
			FeeCount:    commit.FeeCount,
			TotalAmount: commit.TotalAmount,
			TotalGST:    commit.TotalGST,
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return result, producerID, nil
}

func (s *Service) split(ctx context.Context, tx *gorm.DB, orgID int64, journal *journaldomain.Journal, items []journaldomain.CommitItem, cfg config.CommissionConfig) ([]*feedomain.Fee, error) {
	dealIDs := make([]int64, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	for _, item := range items {
		if item.DealID == nil {
			return nil, &domain.UnallocatedAccountsError{Codes: []string{item.ClientCode}}
		}
		if _, ok := seen[*item.DealID]; !ok {
			seen[*item.DealID] = struct{}{}
			dealIDs = append(dealIDs, *item.DealID)
		}
	}
	deals, err := s.deals.LoadWithRules(ctx, tx, orgID, dealIDs)
	if err != nil {
		return nil, err
	}

	engine := feedomain.NewEngine(cfg)
	now := s.clock.Now()
	fees := make([]*feedomain.Fee, 0, len(items)*2)
	for _, item := range items {
		deal, ok := deals[*item.DealID]
		if !ok {
			return nil, fmt.Errorf("%w: %d", domain.ErrDealNotFound, *item.DealID)
		}
		split, err := engine.Split(feedomain.SplitInput{
			LineItemID:  item.ID,
			ProducerID:  journal.ProducerID,
			BkgeClassID: item.BkgeClassID,
			Amount:      item.Amount,
			GST:         item.GST,
			DealAgentID: deal.AgentID,
			Rules:       deal.Rules,
		})
		if err != nil {
			return nil, err
		}
		for i := range split {
			fee := split[i]
			fee.ID = s.genID.Generate().Int64()
			fee.OrgID = orgID
			fee.JournalID = journal.ID
			fee.CreatedAt = now
			fees = append(fees, &fee)
		}
	}
	return fees, nil
}

func (s *Service) payables(ctx context.Context, tx *gorm.DB, orgID int64, fees []*feedomain.Fee) ([]ledgerdomain.Payable, error) {
	owed := make(map[int64]decimal.Decimal)
	for _, f := range fees {
		owed[f.AgentID] = owed[f.AgentID].Add(f.Total())
	}
	ids := make([]int64, 0, len(owed))
	for id := range owed {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	agents, err := s.deals.FindAgents(ctx, tx, orgID, ids)
	if err != nil {
		return nil, err
	}
	out := make([]ledgerdomain.Payable, 0, len(ids))
	for _, id := range ids {
		agent := agents[id]
		out = append(out, ledgerdomain.Payable{
			AgentID:   id,
			AgentCode: agent.Code,
			AgentName: strings.TrimSpace(agent.FirstName + " " + agent.LastName),
			Amount:    owed[id],
		})
	}
	return out, nil
}

func (s *Service) closedResult(ctx context.Context, tx *gorm.DB, journal *journaldomain.Journal) (*domain.Result, error) {
	result := &domain.Result{JournalID: journal.ID, AlreadyClosed: true}
	if journal.CommissionPeriodID != nil {
		result.PeriodID = *journal.CommissionPeriodID
	}
	commit, err := s.repo.FindByJournal(ctx, tx, journal.OrgID, journal.ID)
	if err != nil {
		return nil, err
	}
	if commit != nil {
		result.CommitRef = commit.CommitRef
		result.FeeCount = commit.FeeCount
		result.TotalAmount = commit.TotalAmount
		result.TotalGST = commit.TotalGST
	}
	return result, nil
}

func (s *Service) Get(ctx context.Context, journalID int64) (*domain.JournalCommit, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}
	if journalID == 0 {
		return nil, domain.ErrInvalidID
	}
	commit, err := s.repo.FindByJournal(ctx, s.db, orgID.Int64(), journalID)
	if err != nil {
		return nil, err
	}
	if commit == nil {
		return nil, domain.ErrNotFound
	}
	return commit, nil
}

func (s *Service) producerCode(ctx context.Context, orgID, producerID int64) string {
	producer, err := s.producers.FindByID(ctx, s.db, orgID, producerID)
	if err != nil || producer == nil {
		return "unknown"
	}
	return producer.Code
}

func (s *Service) commissionConfig() config.CommissionConfig {
	if s.config == nil {
		return config.DefaultCommissionConfig()
	}
	return s.config.Get()
}
