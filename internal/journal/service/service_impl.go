package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	accountdomain "github.com/smallbiznis/commission/internal/account/domain"
	"github.com/smallbiznis/commission/internal/clock"
	"github.com/smallbiznis/commission/internal/config"
	"github.com/smallbiznis/commission/internal/journal/domain"
	obsmetrics "github.com/smallbiznis/commission/internal/observability/metrics"
	"github.com/smallbiznis/commission/internal/orgcontext"
	producerdomain "github.com/smallbiznis/commission/internal/producer/domain"
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
	Accounts   accountdomain.Service
	Producers  producerdomain.Service
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
	accounts   accountdomain.Service
	producers  producerdomain.Service
	config     *config.CommissionConfigHolder
	obsMetrics *obsmetrics.Metrics
	jobMetrics *obsmetrics.JobMetrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("journal.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		accounts:   p.Accounts,
		producers:  p.Producers,
		config:     p.Config,
		obsMetrics: p.ObsMetrics,
		jobMetrics: p.JobMetrics,
	}
}

// Ingest normalizes the statement, provisions unknown client accounts and
// stores the resolvable rows as an OPEN journal in one transaction.
func (s *Service) Ingest(ctx context.Context, req domain.IngestRequest) (result *domain.IngestResult, err error) {
	start := time.Now()
	defer func() { s.jobMetrics.Observe(obsmetrics.JobJournalIngest, start, err) }()

	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}
	code := strings.TrimSpace(req.ProducerCode)
	if code == "" {
		return nil, domain.ErrInvalidProducer
	}
	if req.Source == nil {
		return nil, domain.ErrMissingSource
	}
	actorID, _ := orgcontext.ActorIDFromContext(ctx)

	producer, err := s.producers.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, producerdomain.ErrNotFound) {
			return nil, domain.ErrInvalidProducer
		}
		return nil, err
	}
	cleaned, err := s.producers.Clean(ctx, producer.Code, req.Source)
	if err != nil {
		return nil, err
	}
	items := cleaned.Items()
	classCodes := make([]string, 0, len(items))
	for _, item := range items {
		classCodes = append(classCodes, item.BkgeCode)
	}
	classes, err := s.producers.ClassLookup(ctx, classCodes)
	if err != nil {
		return nil, err
	}

	cfg := s.commissionConfig()
	now := s.clock.Now()
	journal := &domain.Journal{
		ID:             s.genID.Generate().Int64(),
		OrgID:          orgID.Int64(),
		ProducerID:     producer.ID,
		Status:         domain.StatusOpen,
		Description:    strings.TrimSpace(req.Description),
		Reference:      strings.TrimSpace(req.Reference),
		SourceFilename: strings.TrimSpace(req.Filename),
		CreatedBy:      actorID.Int64(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.CashAmount != nil {
		journal.CashAmount = decimal.NewNullDecimal(*req.CashAmount)
	}
	report := domain.IngestReport{
		Rows:             len(items),
		CoercionFailures: cleaned.Report.Failures,
		CoercionCells:    cleaned.Report.Cells,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, journal); err != nil {
			return err
		}
		provisioned, err := s.accounts.Reconcile(ctx, tx, producer.ID, items, actorID.Int64())
		if err != nil {
			return err
		}
		report.ProvisionedAccounts = provisioned

		codes := make([]string, 0, len(items))
		for _, item := range items {
			codes = append(codes, item.AccountCode)
		}
		accounts, err := s.accounts.Lookup(ctx, tx, producer.ID, codes)
		if err != nil {
			return err
		}
		accountIDs := make(map[string]int64, len(accounts))
		for code, a := range accounts {
			accountIDs[code] = a.ID
		}

		rows, dropped := domain.Materialize(items, domain.Lookups{Accounts: accountIDs, Classes: classes})
		report.Dropped = dropped
		report.LineItems = len(rows)

		batch := make([]*domain.LineItem, len(rows))
		for i := range rows {
			rows[i].ID = s.genID.Generate().Int64()
			rows[i].OrgID = orgID.Int64()
			rows[i].JournalID = journal.ID
			rows[i].CreatedAt = now
			batch[i] = &rows[i]
		}
		if err := s.repo.InsertLineItems(ctx, tx, batch, cfg.BatchSize); err != nil {
			return err
		}

		journal.IngestReport = report.JSONMap()
		return s.repo.UpdateReport(ctx, tx, orgID.Int64(), journal.ID, journal.IngestReport)
	})
	if err != nil {
		s.log.Error("journal ingest failed",
			zap.String("producer_code", producer.Code),
			zap.Int64("journal_id", journal.ID),
			zap.Error(err),
		)
		return nil, err
	}

	s.obsMetrics.RecordJournalIngested(ctx, producer.Code, len(report.Dropped), report.CoercionFailures, len(report.ProvisionedAccounts))
	s.jobMetrics.AddProcessed(obsmetrics.JobJournalIngest, "line_items", report.LineItems)
	s.log.Info("journal ingested",
		zap.Int64("journal_id", journal.ID),
		zap.String("producer_code", producer.Code),
		zap.Int("line_items", report.LineItems),
		zap.Int("dropped", len(report.Dropped)),
		zap.Int("coercion_failures", report.CoercionFailures),
	)
	return &domain.IngestResult{Journal: journal, Report: report}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Journal, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}
	if id == 0 {
		return nil, domain.ErrInvalidID
	}
	journal, err := s.repo.FindByID(ctx, s.db, orgID.Int64(), id)
	if err != nil {
		return nil, err
	}
	if journal == nil {
		return nil, domain.ErrNotFound
	}
	return journal, nil
}

func (s *Service) ListLineItems(ctx context.Context, journalID int64) ([]domain.LineItem, error) {
	if _, err := s.Get(ctx, journalID); err != nil {
		return nil, err
	}
	orgID, _ := orgcontext.OrgIDFromContext(ctx)
	return s.repo.ListLineItems(ctx, s.db, orgID.Int64(), journalID)
}

func (s *Service) commissionConfig() config.CommissionConfig {
	if s.config == nil {
		return config.DefaultCommissionConfig()
	}
	return s.config.Get()
}
