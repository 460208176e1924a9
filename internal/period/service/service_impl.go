package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/commission/internal/clock"
	obsmetrics "github.com/smallbiznis/commission/internal/observability/metrics"
	"github.com/smallbiznis/commission/internal/orgcontext"
	"github.com/smallbiznis/commission/internal/period/domain"
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
	Hooks      []domain.RolloverHook  `group:"rollover_hooks"`
	JobMetrics *obsmetrics.JobMetrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	hooks      []domain.RolloverHook
	jobMetrics *obsmetrics.JobMetrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("period.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		hooks:      p.Hooks,
		jobMetrics: p.JobMetrics,
	}
}

func (s *Service) GetOrCreateCurrent(ctx context.Context) (*domain.CommissionPeriod, error) {
	var current *domain.CommissionPeriod
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		current, err = s.CurrentIn(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return current, nil
}

// CurrentIn returns the unprocessed period. When none exists it creates the
// period ending on the last day of the current month, or the month after
// the latest period when that one is already processed.
func (s *Service) CurrentIn(ctx context.Context, tx *gorm.DB) (*domain.CommissionPeriod, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}
	return s.current(ctx, tx, orgID.Int64(), false)
}

func (s *Service) current(ctx context.Context, tx *gorm.DB, orgID int64, lock bool) (*domain.CommissionPeriod, error) {
	open, err := s.repo.ListUnprocessed(ctx, tx, orgID, lock)
	if err != nil {
		return nil, err
	}
	switch {
	case len(open) > 1:
		return nil, domain.ErrMultipleOpenPeriods
	case len(open) == 1:
		return &open[0], nil
	}

	endDate := clock.EndOfMonth(s.clock.Now())
	existing, err := s.repo.FindByEndDate(ctx, tx, orgID, endDate)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Processed {
		latest, err := s.repo.Latest(ctx, tx, orgID)
		if err != nil {
			return nil, err
		}
		endDate = nextEndDate(latest.EndDate)
	}
	return s.ensure(ctx, tx, orgID, endDate)
}

func (s *Service) CloseAndCreateNext(ctx context.Context) (result *domain.RolloverResult, err error) {
	start := time.Now()
	defer func() { s.jobMetrics.Observe(obsmetrics.JobPeriodRollover, start, err) }()

	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lockStart := time.Now()
		current, err := s.current(ctx, tx, orgID.Int64(), true)
		if err != nil {
			return err
		}
		s.jobMetrics.ObserveLockWait("commission_periods", time.Since(lockStart))

		now := s.clock.Now()
		if err := s.repo.MarkProcessed(ctx, tx, orgID.Int64(), current.ID, now); err != nil {
			return err
		}
		current.Processed = true
		current.ProcessedAt = &now

		next, err := s.ensure(ctx, tx, orgID.Int64(), nextEndDate(current.EndDate))
		if err != nil {
			return err
		}

		for _, hook := range s.hooks {
			if err := hook.OnPeriodRollover(ctx, tx, *current, *next); err != nil {
				return err
			}
		}
		result = &domain.RolloverResult{Closed: *current, Opened: *next}
		return nil
	})
	if err != nil {
		s.log.Error("period rollover failed", zap.Int64("org_id", orgID.Int64()), zap.Error(err))
		return nil, err
	}

	s.log.Info("commission period closed",
		zap.Int64("org_id", orgID.Int64()),
		zap.Time("closed_end_date", result.Closed.EndDate),
		zap.Time("opened_end_date", result.Opened.EndDate),
	)
	return result, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.CommissionPeriod, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}
	if id == 0 {
		return nil, domain.ErrInvalidID
	}
	p, err := s.repo.FindByID(ctx, s.db, orgID.Int64(), id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (s *Service) ensure(ctx context.Context, tx *gorm.DB, orgID int64, endDate time.Time) (*domain.CommissionPeriod, error) {
	now := s.clock.Now()
	if err := s.repo.InsertIfAbsent(ctx, tx, &domain.CommissionPeriod{
		ID:        s.genID.Generate().Int64(),
		OrgID:     orgID,
		EndDate:   endDate,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return nil, err
	}
	return s.repo.FindByEndDate(ctx, tx, orgID, endDate)
}

// nextEndDate is the last day of the month after endDate.
func nextEndDate(endDate time.Time) time.Time {
	return clock.EndOfMonth(endDate.AddDate(0, 0, 1))
}
