package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/commission/internal/account/domain"
	"github.com/smallbiznis/commission/internal/account/repository"
	"github.com/smallbiznis/commission/internal/clock"
	"github.com/smallbiznis/commission/internal/config"
	dealdomain "github.com/smallbiznis/commission/internal/deal/domain"
	dealrepository "github.com/smallbiznis/commission/internal/deal/repository"
	"github.com/smallbiznis/commission/internal/orgcontext"
	"github.com/smallbiznis/commission/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	testOrgID      = 42
	testProducerID = 7
)

func setupTest(t *testing.T) (*gorm.DB, domain.Service, context.Context) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.ClientAccount{}, &dealdomain.Deal{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	cfg := config.DefaultCommissionConfig()
	cfg.BatchSize = 2
	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clock.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)),
		Repo:     repository.Provide(),
		DealRepo: dealrepository.Provide(),
		Config:   config.NewStaticCommissionConfigHolder(cfg),
	})
	ctx := orgcontext.WithOrgID(context.Background(), snowflake.ID(testOrgID))
	return db, svc, ctx
}

func seedAccounts(t *testing.T, db *gorm.DB, codes ...string) {
	t.Helper()
	for i, code := range codes {
		require.NoError(t, db.Create(&domain.ClientAccount{
			ID:         int64(1000 + i),
			OrgID:      testOrgID,
			ProducerID: testProducerID,
			ClientCode: code,
		}).Error)
	}
}

func TestResolveAccountsReturnsMissingCodes(t *testing.T) {
	db, svc, ctx := setupTest(t)
	seedAccounts(t, db, "100", "101", "102")

	missing, err := svc.ResolveAccounts(ctx, []string{"100", "101", "102", "103"}, testProducerID)
	require.NoError(t, err)
	assert.Equal(t, []string{"103"}, missing)
}

func TestResolveAccountsNormalizesFloatArtifacts(t *testing.T) {
	db, svc, ctx := setupTest(t)
	seedAccounts(t, db, "100")

	missing, err := svc.ResolveAccounts(ctx, []string{"100.0", " 104.0", "104"}, testProducerID)
	require.NoError(t, err)
	assert.Equal(t, []string{"104"}, missing)
}

func TestResolveAccountsScopedToOrganization(t *testing.T) {
	_, svc, _ := setupTest(t)
	_, err := svc.ResolveAccounts(context.Background(), []string{"1"}, testProducerID)
	assert.ErrorIs(t, err, domain.ErrInvalidOrganization)
}

func TestReconcileIsIdempotent(t *testing.T) {
	db, svc, ctx := setupTest(t)
	seedAccounts(t, db, "100")

	items := []pipeline.CanonicalLineItem{
		{AccountCode: "100", Name: "Known"},
		{AccountCode: "200.0", Name: "Alice"},
		{AccountCode: "200", Name: "Alice again"},
		{AccountCode: "300", Name: "Bob"},
		{AccountCode: "400", Name: "Carol"},
	}

	created, err := svc.Reconcile(ctx, db, testProducerID, items, 9)
	require.NoError(t, err)
	assert.Equal(t, []string{"200", "300", "400"}, created)

	again, err := svc.Reconcile(ctx, db, testProducerID, items, 9)
	require.NoError(t, err)
	assert.Empty(t, again)

	var count int64
	require.NoError(t, db.Model(&domain.ClientAccount{}).Where("org_id = ?", testOrgID).Count(&count).Error)
	assert.Equal(t, int64(4), count)

	accounts, err := svc.Lookup(ctx, db, testProducerID, []string{"200"})
	require.NoError(t, err)
	require.Contains(t, accounts, "200")
	assert.Equal(t, "Alice", accounts["200"].Name)
	assert.Equal(t, int64(9), accounts["200"].CreatedBy)
	assert.False(t, accounts["200"].Allocated())
}

func TestAssignDealMovesAccountOutOfUnallocated(t *testing.T) {
	db, svc, ctx := setupTest(t)
	seedAccounts(t, db, "100", "101")
	require.NoError(t, db.Create(&dealdomain.Deal{ID: 5, OrgID: testOrgID, Code: "D", Name: "Deal", AgentID: 1}).Error)

	before, err := svc.ListUnallocated(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, before, 2)

	account, err := svc.AssignDeal(orgcontext.WithActorID(ctx, 77), 1000, 5)
	require.NoError(t, err)
	require.NotNil(t, account.DealID)
	assert.Equal(t, int64(5), *account.DealID)
	assert.Equal(t, int64(77), account.UpdatedBy)

	producerID := int64(testProducerID)
	after, err := svc.ListUnallocated(ctx, &producerID)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, "101", after[0].ClientCode)
}

func TestAssignDealUnknownDeal(t *testing.T) {
	db, svc, ctx := setupTest(t)
	seedAccounts(t, db, "100")

	_, err := svc.AssignDeal(ctx, 1000, 404)
	assert.ErrorIs(t, err, domain.ErrDealNotFound)

	_, err = svc.AssignDeal(ctx, 999, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
