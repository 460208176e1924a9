package service

import (
	"context"
	"sort"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/commission/internal/account/domain"
	"github.com/smallbiznis/commission/internal/clock"
	"github.com/smallbiznis/commission/internal/config"
	dealdomain "github.com/smallbiznis/commission/internal/deal/domain"
	"github.com/smallbiznis/commission/internal/orgcontext"
	"github.com/smallbiznis/commission/internal/pipeline"
	"github.com/smallbiznis/commission/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	DealRepo dealdomain.Repository
	Config   *config.CommissionConfigHolder `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	dealRepo dealdomain.Repository
	config   *config.CommissionConfigHolder
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("account.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		dealRepo: p.DealRepo,
		config:   p.Config,
	}
}

func (s *Service) ResolveAccounts(ctx context.Context, codes []string, producerID int64) ([]string, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}
	if producerID == 0 {
		return nil, domain.ErrInvalidProducer
	}
	return s.missing(ctx, s.db, orgID.Int64(), producerID, uniqueCodes(codes))
}

func (s *Service) Reconcile(ctx context.Context, tx *gorm.DB, producerID int64, items []pipeline.CanonicalLineItem, actorID int64) ([]string, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}
	if producerID == 0 {
		return nil, domain.ErrInvalidProducer
	}
	if tx == nil {
		tx = s.db
	}

	names := make(map[string]string, len(items))
	codes := make([]string, 0, len(items))
	for _, item := range items {
		code := domain.NormalizeCode(item.AccountCode)
		if code == "" {
			continue
		}
		if _, seen := names[code]; !seen {
			names[code] = item.Name
			codes = append(codes, code)
		}
	}

	missing, err := s.missing(ctx, tx, orgID.Int64(), producerID, codes)
	if err != nil {
		return nil, err
	}
	if len(missing) == 0 {
		return nil, nil
	}

	now := s.clock.Now()
	accounts := make([]domain.ClientAccount, 0, len(missing))
	for _, code := range missing {
		accounts = append(accounts, domain.ClientAccount{
			ID:         s.genID.Generate().Int64(),
			OrgID:      orgID.Int64(),
			ProducerID: producerID,
			ClientCode: code,
			Name:       names[code],
			CreatedBy:  actorID,
			UpdatedBy:  actorID,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	if err := s.repo.InsertMissing(ctx, tx, accounts, s.batchSize()); err != nil {
		return nil, err
	}
	s.log.Info("client accounts provisioned",
		zap.Int64("org_id", orgID.Int64()),
		zap.Int64("producer_id", producerID),
		zap.Int("count", len(missing)),
	)
	return missing, nil
}

func (s *Service) Lookup(ctx context.Context, tx *gorm.DB, producerID int64, codes []string) (map[string]domain.ClientAccount, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}
	if tx == nil {
		tx = s.db
	}
	found, err := s.repo.FindByCodes(ctx, tx, orgID.Int64(), producerID, uniqueCodes(codes))
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.ClientAccount, len(found))
	for _, a := range found {
		out[a.ClientCode] = a
	}
	return out, nil
}

func (s *Service) AssignDeal(ctx context.Context, accountID, dealID int64) (*domain.ClientAccount, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}
	if accountID == 0 || dealID == 0 {
		return nil, domain.ErrInvalidID
	}
	actorID, _ := orgcontext.ActorIDFromContext(ctx)

	var updated *domain.ClientAccount
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := s.repo.FindByID(ctx, tx, orgID.Int64(), accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return domain.ErrNotFound
		}
		deal, err := s.dealRepo.FindByID(ctx, tx, orgID.Int64(), dealID)
		if err != nil {
			return err
		}
		if deal == nil {
			return domain.ErrDealNotFound
		}
		account.DealID = &deal.ID
		account.UpdatedBy = actorID.Int64()
		account.UpdatedAt = s.clock.Now()
		if err := s.repo.UpdateDeal(ctx, tx, account); err != nil {
			return err
		}
		updated = account
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) ListUnallocated(ctx context.Context, producerID *int64) ([]domain.ClientAccount, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}
	return s.repo.ListUnallocated(ctx, s.db, orgID.Int64(), producerID)
}

func (s *Service) missing(ctx context.Context, db *gorm.DB, orgID, producerID int64, codes []string) ([]string, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	known := make(map[string]struct{}, len(codes))
	for _, chunk := range chunks(codes, s.batchSize()) {
		found, err := s.repo.FindByCodes(ctx, db, orgID, producerID, chunk)
		if err != nil {
			return nil, err
		}
		for _, a := range found {
			known[a.ClientCode] = struct{}{}
		}
	}
	var missing []string
	for _, code := range codes {
		if _, ok := known[code]; !ok {
			missing = append(missing, code)
		}
	}
	sort.Strings(missing)
	return missing, nil
}

func (s *Service) batchSize() int {
	if s.config == nil {
		return config.DefaultCommissionConfig().BatchSize
	}
	return s.config.Get().BatchSize
}

func uniqueCodes(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = domain.NormalizeCode(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func chunks(codes []string, size int) [][]string {
	var out [][]string
	for _, r := range db.Chunk(len(codes), size) {
		out = append(out, codes[r[0]:r[1]])
	}
	return out
}
