package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/commission/internal/charge/domain"
	"github.com/smallbiznis/commission/internal/clock"
	"github.com/smallbiznis/commission/internal/config"
	obsmetrics "github.com/smallbiznis/commission/internal/observability/metrics"
	"github.com/smallbiznis/commission/internal/orgcontext"
	perioddomain "github.com/smallbiznis/commission/internal/period/domain"
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
	config     *config.CommissionConfigHolder
	obsMetrics *obsmetrics.Metrics
	jobMetrics *obsmetrics.JobMetrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("charge.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		config:     p.Config,
		obsMetrics: p.ObsMetrics,
		jobMetrics: p.JobMetrics,
	}
}

func (s *Service) OnPeriodRollover(ctx context.Context, tx *gorm.DB, _, opened perioddomain.CommissionPeriod) error {
	_, err := s.RollCharges(ctx, tx, opened)
	return err
}

func (s *Service) RollCharges(ctx context.Context, tx *gorm.DB, period perioddomain.CommissionPeriod) (*domain.RollResult, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}
	if tx == nil {
		tx = s.db
	}
	now := s.clock.Now()
	result := &domain.RollResult{}

	open, err := s.repo.ListRolling(ctx, tx, orgID.Int64(), period.ID)
	if err != nil {
		return nil, err
	}

	var successors []*domain.Charge
	var deferred, closed []int64
	for _, c := range open {
		if !c.RollBalance {
			closed = append(closed, c.ID)
			continue
		}
		originalID := c.ID
		successors = append(successors, &domain.Charge{
			ID:                 s.genID.Generate().Int64(),
			OrgID:              orgID.Int64(),
			CommissionPeriodID: period.ID,
			OriginalChargeID:   &originalID,
			ScheduleID:         c.ScheduleID,
			PayingAgentID:      c.PayingAgentID,
			ReceivingAgentID:   c.ReceivingAgentID,
			TotalAmount:        c.OutstandingAmount,
			TotalGST:           c.OutstandingGST,
			OutstandingAmount:  c.OutstandingAmount,
			OutstandingGST:     c.OutstandingGST,
			Status:             domain.StatusOpen,
			CreatedAt:          now,
			UpdatedAt:          now,
		})
		deferred = append(deferred, c.ID)
	}
	if err := s.repo.UpdateStatus(ctx, tx, orgID.Int64(), deferred, domain.StatusDeferred, now); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, tx, orgID.Int64(), closed, domain.StatusClosed, now); err != nil {
		return nil, err
	}
	result.Deferred = len(deferred)
	result.Closed = len(closed)

	schedules, err := s.repo.ListSchedulesDue(ctx, tx, orgID.Int64(), period.ID, period.EndDate)
	if err != nil {
		return nil, err
	}
	fresh := make([]*domain.Charge, 0, len(schedules))
	for _, sch := range schedules {
		if !sch.Covers(period.EndDate) {
			continue
		}
		fresh = append(fresh, &domain.Charge{
			ID:                 s.genID.Generate().Int64(),
			OrgID:              orgID.Int64(),
			CommissionPeriodID: period.ID,
			ScheduleID:         sch.ID,
			PayingAgentID:      sch.PayingAgentID,
			ReceivingAgentID:   sch.ReceivingAgentID,
			TotalAmount:        sch.Amount,
			TotalGST:           sch.GST,
			OutstandingAmount:  sch.Amount,
			OutstandingGST:     sch.GST,
			Status:             domain.StatusOpen,
			CreatedAt:          now,
			UpdatedAt:          now,
		})
	}
	result.Instantiated = len(fresh)

	if err := s.repo.Insert(ctx, tx, append(successors, fresh...), s.batchSize()); err != nil {
		return nil, err
	}

	s.obsMetrics.RecordChargesRolled(ctx, "deferred", result.Deferred)
	s.obsMetrics.RecordChargesRolled(ctx, "closed", result.Closed)
	s.obsMetrics.RecordChargesRolled(ctx, "instantiated", result.Instantiated)
	s.jobMetrics.AddProcessed(obsmetrics.JobPeriodRollover, "charges", result.Deferred+result.Closed+result.Instantiated)
	s.log.Info("charges rolled",
		zap.Int64("org_id", orgID.Int64()),
		zap.Int64("commission_period_id", period.ID),
		zap.Int("deferred", result.Deferred),
		zap.Int("closed", result.Closed),
		zap.Int("instantiated", result.Instantiated),
	)
	return result, nil
}

func (s *Service) ListOpen(ctx context.Context) ([]domain.Charge, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}
	return s.repo.ListOpen(ctx, s.db, orgID.Int64())
}

func (s *Service) batchSize() int {
	if s.config == nil {
		return config.DefaultCommissionConfig().BatchSize
	}
	return s.config.Get().BatchSize
}
