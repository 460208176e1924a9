package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	accountdomain "github.com/smallbiznis/commission/internal/account/domain"
	accountrepository "github.com/smallbiznis/commission/internal/account/repository"
	accountservice "github.com/smallbiznis/commission/internal/account/service"
	"github.com/smallbiznis/commission/internal/clock"
	dealrepository "github.com/smallbiznis/commission/internal/deal/repository"
	"github.com/smallbiznis/commission/internal/journal/domain"
	"github.com/smallbiznis/commission/internal/journal/repository"
	"github.com/smallbiznis/commission/internal/orgcontext"
	"github.com/smallbiznis/commission/internal/pipeline"
	producerdomain "github.com/smallbiznis/commission/internal/producer/domain"
	"github.com/smallbiznis/commission/internal/producer/registry"
	producerrepository "github.com/smallbiznis/commission/internal/producer/repository"
	producerservice "github.com/smallbiznis/commission/internal/producer/service"
	"github.com/smallbiznis/commission/internal/tabular"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testOrgID = 42

func cannedHandler(rows [][]string) registry.Handler {
	return registry.HandlerFunc(func(context.Context, io.ReadSeeker) (*pipeline.Result, error) {
		t := tabular.New([]string{"acc", "who", "class", "amt", "gst"}, rows)
		return pipeline.Standardize(t, map[string]string{
			"acc":   pipeline.ColAccountCode,
			"who":   pipeline.ColName,
			"class": pipeline.ColBkgeCode,
			"amt":   pipeline.ColAmount,
			"gst":   pipeline.ColGST,
		})
	})
}

func setupTest(t *testing.T, rows [][]string) (*gorm.DB, domain.Service, context.Context) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&producerdomain.Producer{},
		&producerdomain.BkgeClass{},
		&accountdomain.ClientAccount{},
		&domain.Journal{},
		&domain.LineItem{},
	))

	require.NoError(t, db.Create(&producerdomain.Producer{ID: 7, OrgID: testOrgID, Code: "SFG", Name: "SFG"}).Error)
	require.NoError(t, db.Create(&[]producerdomain.BkgeClass{
		{ID: 1, OrgID: testOrgID, Code: "MXI", Name: "Upfront"},
		{ID: 2, OrgID: testOrgID, Code: "MXO", Name: "Trail"},
	}).Error)
	require.NoError(t, db.Create(&accountdomain.ClientAccount{ID: 500, OrgID: testOrgID, ProducerID: 7, ClientCode: "100"}).Error)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zap.NewNop()
	clk := clock.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))

	producers := producerservice.New(producerservice.Params{
		DB:       db,
		Log:      log,
		Repo:     producerrepository.Provide(),
		Registry: registry.NewRegistry(registry.Registration{Kind: producerdomain.KindSFG, Handler: cannedHandler(rows)}),
	})
	accounts := accountservice.New(accountservice.Params{
		DB:       db,
		Log:      log,
		GenID:    node,
		Clock:    clk,
		Repo:     accountrepository.Provide(),
		DealRepo: dealrepository.Provide(),
	})
	svc := New(Params{
		DB:        db,
		Log:       log,
		GenID:     node,
		Clock:     clk,
		Repo:      repository.Provide(),
		Accounts:  accounts,
		Producers: producers,
	})
	ctx := orgcontext.WithActorID(orgcontext.WithOrgID(context.Background(), testOrgID), 9)
	return db, svc, ctx
}

func TestIngestCreatesOpenJournal(t *testing.T) {
	db, svc, ctx := setupTest(t, [][]string{
		{"100", "Alice", "MXI", "$1,000.00", "100"},
		{"200.0", "Bob", "MXO", "50", "5"},
		{"300", "Carol", "ZZZ", "10", "1"},
		{"", "Nobody", "MXI", "oops", "0"},
	})
	cash := decimal.NewFromInt(1155)

	res, err := svc.Ingest(ctx, domain.IngestRequest{
		ProducerCode: "SFG",
		Filename:     "march.xlsx",
		Source:       bytes.NewReader([]byte("ignored")),
		Description:  " March ",
		CashAmount:   &cash,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusOpen, res.Journal.Status)
	assert.Equal(t, "March", res.Journal.Description)
	assert.Equal(t, 4, res.Report.Rows)
	assert.Equal(t, 2, res.Report.LineItems)
	assert.Equal(t, 1, res.Report.CoercionFailures)
	assert.Equal(t, []string{"200", "300"}, res.Report.ProvisionedAccounts)
	require.Len(t, res.Report.Dropped, 2)
	assert.Equal(t, domain.DropUnknownClass, res.Report.Dropped[0].Reason)
	assert.Equal(t, domain.DropMissingAccount, res.Report.Dropped[1].Reason)

	stored, err := svc.Get(ctx, res.Journal.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(9), stored.CreatedBy)
	assert.True(t, stored.CashAmount.Valid)
	assert.True(t, stored.CashAmount.Decimal.Equal(cash))
	assert.Equal(t, float64(2), stored.IngestReport["line_items"])

	items, err := svc.ListLineItems(ctx, res.Journal.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(500), items[0].ClientAccountID)
	assert.True(t, items[0].Amount.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, int64(2), items[1].BkgeClassID)

	var accounts int64
	require.NoError(t, db.Model(&accountdomain.ClientAccount{}).Count(&accounts).Error)
	assert.Equal(t, int64(3), accounts)
}

func TestIngestResolvesClassCreatedBetweenIngests(t *testing.T) {
	db, svc, ctx := setupTest(t, [][]string{{"100", "Alice", "MXR", "10", "1"}})

	first, err := svc.Ingest(ctx, domain.IngestRequest{ProducerCode: "SFG", Source: bytes.NewReader(nil)})
	require.NoError(t, err)
	assert.Zero(t, first.Report.LineItems)
	require.Len(t, first.Report.Dropped, 1)
	assert.Equal(t, domain.DropUnknownClass, first.Report.Dropped[0].Reason)

	require.NoError(t, db.Create(&producerdomain.BkgeClass{ID: 3, OrgID: testOrgID, Code: "MXR", Name: "Clawback"}).Error)

	second, err := svc.Ingest(ctx, domain.IngestRequest{ProducerCode: "SFG", Source: bytes.NewReader(nil)})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Report.LineItems)
	assert.Empty(t, second.Report.Dropped)

	items, err := svc.ListLineItems(ctx, second.Journal.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(3), items[0].BkgeClassID)
}

func TestIngestUnknownProducer(t *testing.T) {
	_, svc, ctx := setupTest(t, [][]string{{"100", "A", "MXI", "1", "0"}})

	_, err := svc.Ingest(ctx, domain.IngestRequest{ProducerCode: "FNS", Source: bytes.NewReader(nil)})
	assert.ErrorIs(t, err, domain.ErrInvalidProducer)

	_, err = svc.Ingest(context.Background(), domain.IngestRequest{ProducerCode: "SFG", Source: bytes.NewReader(nil)})
	assert.ErrorIs(t, err, domain.ErrInvalidOrganization)
}

func TestIngestUnsupportedProducerLayout(t *testing.T) {
	db, svc, ctx := setupTest(t, [][]string{{"100", "A", "MXI", "1", "0"}})
	require.NoError(t, db.Create(&producerdomain.Producer{ID: 8, OrgID: testOrgID, Code: "ABC", Name: "Other"}).Error)

	_, err := svc.Ingest(ctx, domain.IngestRequest{ProducerCode: "ABC", Source: bytes.NewReader(nil)})
	var unsupported *producerdomain.UnsupportedProducerError
	assert.ErrorAs(t, err, &unsupported)

	var journals int64
	require.NoError(t, db.Model(&domain.Journal{}).Count(&journals).Error)
	assert.Zero(t, journals)
}

func TestGetUnknownJournal(t *testing.T) {
	_, svc, ctx := setupTest(t, nil)
	_, err := svc.Get(ctx, 12345)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
