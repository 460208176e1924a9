package service

import (
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/smallbiznis/commission/internal/orgcontext"
	"github.com/smallbiznis/commission/internal/pipeline"
	"github.com/smallbiznis/commission/internal/producer/domain"
	"github.com/smallbiznis/commission/internal/producer/registry"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const classLookupTTL = 5 * time.Minute

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Repo     domain.Repository
	Registry *registry.Registry
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	repo     domain.Repository
	registry *registry.Registry
	classes  *cache.Cache
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("producer.service"),
		repo:     p.Repo,
		registry: p.Registry,
		classes:  cache.New(classLookupTTL, 2*classLookupTTL),
	}
}

func (s *Service) GetByCode(ctx context.Context, code string) (*domain.Producer, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.ErrInvalidCode
	}
	p, err := s.repo.FindByCode(ctx, s.db, orgID.Int64(), code)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (s *Service) ClassLookup(ctx context.Context, codes []string) (map[string]int64, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}
	key := strconv.FormatInt(orgID.Int64(), 10)
	if cached, found := s.classes.Get(key); found {
		lookup := cached.(map[string]int64)
		if covers(lookup, codes) {
			return lookup, nil
		}
	}

	items, err := s.repo.ListClasses(ctx, s.db, orgID.Int64())
	if err != nil {
		return nil, err
	}
	lookup := make(map[string]int64, len(items))
	for _, c := range items {
		lookup[c.Code] = c.ID
	}
	s.classes.SetDefault(key, lookup)
	s.log.Debug("brokerage classes loaded", zap.String("org_id", key), zap.Int("count", len(lookup)))
	return lookup, nil
}

func covers(lookup map[string]int64, codes []string) bool {
	for _, code := range codes {
		if code == "" {
			continue
		}
		if _, ok := lookup[code]; !ok {
			return false
		}
	}
	return true
}

func (s *Service) Clean(ctx context.Context, code string, src io.ReadSeeker) (*pipeline.Result, error) {
	res, err := s.registry.Clean(ctx, code, src)
	if err != nil {
		s.log.Warn("producer export rejected", zap.String("producer_code", code), zap.Error(err))
		return nil, err
	}
	return res, nil
}
