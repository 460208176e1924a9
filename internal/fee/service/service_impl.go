package service

import (
	"context"

	"github.com/smallbiznis/commission/internal/fee/domain"
	"github.com/smallbiznis/commission/internal/orgcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("fee.service"),
		repo: p.Repo,
	}
}

func (s *Service) ListByJournal(ctx context.Context, journalID int64) ([]domain.Fee, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}
	if journalID == 0 {
		return nil, domain.ErrInvalidID
	}
	return s.repo.ListByJournal(ctx, s.db, orgID.Int64(), journalID)
}

func (s *Service) ListByPeriod(ctx context.Context, periodID int64, filter domain.PeriodFilter) ([]domain.Fee, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}
	if periodID == 0 {
		return nil, domain.ErrInvalidID
	}
	return s.repo.ListByPeriod(ctx, s.db, orgID.Int64(), periodID, filter)
}
