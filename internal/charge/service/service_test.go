package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/commission/internal/charge/domain"
	"github.com/smallbiznis/commission/internal/charge/repository"
	"github.com/smallbiznis/commission/internal/clock"
	"github.com/smallbiznis/commission/internal/orgcontext"
	perioddomain "github.com/smallbiznis/commission/internal/period/domain"
	periodrepository "github.com/smallbiznis/commission/internal/period/repository"
	periodservice "github.com/smallbiznis/commission/internal/period/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testOrgID = 7

type fixture struct {
	db      *gorm.DB
	node    *snowflake.Node
	charges domain.Service
	periods perioddomain.Service
	ctx     context.Context
}

func setupTest(t *testing.T, now time.Time) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&perioddomain.CommissionPeriod{},
		&domain.ChargeType{},
		&domain.ChargeSchedule{},
		&domain.Charge{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(now)
	charges := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  repository.Provide(),
	})
	periods := periodservice.New(periodservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  periodrepository.Provide(),
		Hooks: []perioddomain.RolloverHook{charges},
	})
	return &fixture{
		db:      db,
		node:    node,
		charges: charges,
		periods: periods,
		ctx:     orgcontext.WithOrgID(context.Background(), testOrgID),
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (f *fixture) schedule(t *testing.T, roll bool, start time.Time, end *time.Time, amount string) domain.ChargeSchedule {
	t.Helper()
	s := domain.ChargeSchedule{
		ID:               f.node.Generate().Int64(),
		OrgID:            testOrgID,
		ChargeTypeID:     1,
		PayingAgentID:    100,
		ReceivingAgentID: 200,
		Frequency:        "MONTHLY",
		RollBalance:      roll,
		Status:           domain.ScheduleStatusOpen,
		StartDate:        start,
		EndDate:          end,
		Amount:           decimal.RequireFromString(amount),
		GST:              decimal.RequireFromString(amount).Div(decimal.NewFromInt(10)),
	}
	require.NoError(t, f.db.Create(&s).Error)
	return s
}

func chargesFor(t *testing.T, db *gorm.DB, periodID int64) []domain.Charge {
	t.Helper()
	var out []domain.Charge
	require.NoError(t, db.Where("org_id = ? AND commission_period_id = ?", testOrgID, periodID).
		Order("id ASC").Find(&out).Error)
	return out
}

func TestRolloverCarriesOutstandingBalance(t *testing.T) {
	f := setupTest(t, time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC))
	sched := f.schedule(t, true, day(2025, 1, 1), nil, "500")

	p1, err := f.periods.GetOrCreateCurrent(f.ctx)
	require.NoError(t, err)
	result, err := f.charges.RollCharges(f.ctx, f.db, *p1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Instantiated)

	first := chargesFor(t, f.db, p1.ID)
	require.Len(t, first, 1)
	assert.Equal(t, sched.ID, first[0].ScheduleID)
	assert.Nil(t, first[0].OriginalChargeID)
	assert.True(t, first[0].OutstandingAmount.Equal(decimal.NewFromInt(500)))

	rollover, err := f.periods.CloseAndCreateNext(f.ctx)
	require.NoError(t, err)
	p2 := rollover.Opened
	assert.True(t, p2.EndDate.Equal(day(2025, 2, 28)))

	second := chargesFor(t, f.db, p2.ID)
	require.Len(t, second, 2)

	var rolled, fresh *domain.Charge
	for i := range second {
		if second[i].OriginalChargeID != nil {
			rolled = &second[i]
		} else {
			fresh = &second[i]
		}
	}
	require.NotNil(t, rolled)
	require.NotNil(t, fresh)
	assert.Equal(t, first[0].ID, *rolled.OriginalChargeID)
	assert.True(t, rolled.OutstandingAmount.Equal(decimal.NewFromInt(500)))
	assert.True(t, rolled.TotalAmount.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, domain.StatusOpen, rolled.Status)
	assert.Equal(t, sched.ID, fresh.ScheduleID)

	previous := chargesFor(t, f.db, p1.ID)
	require.Len(t, previous, 1)
	assert.Equal(t, domain.StatusDeferred, previous[0].Status)
}

func TestRolloverClosesNonRollingCharges(t *testing.T) {
	f := setupTest(t, time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC))
	f.schedule(t, false, day(2025, 1, 1), nil, "120")

	p1, err := f.periods.GetOrCreateCurrent(f.ctx)
	require.NoError(t, err)
	_, err = f.charges.RollCharges(f.ctx, f.db, *p1)
	require.NoError(t, err)

	rollover, err := f.periods.CloseAndCreateNext(f.ctx)
	require.NoError(t, err)

	previous := chargesFor(t, f.db, p1.ID)
	require.Len(t, previous, 1)
	assert.Equal(t, domain.StatusClosed, previous[0].Status)

	next := chargesFor(t, f.db, rollover.Opened.ID)
	require.Len(t, next, 1)
	assert.Nil(t, next[0].OriginalChargeID)
}

func TestScheduleWindowIsHalfOpen(t *testing.T) {
	f := setupTest(t, time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC))
	end := day(2025, 1, 31)
	f.schedule(t, false, day(2025, 1, 1), &end, "80")
	f.schedule(t, false, day(2025, 2, 1), nil, "90")

	p1, err := f.periods.GetOrCreateCurrent(f.ctx)
	require.NoError(t, err)
	result, err := f.charges.RollCharges(f.ctx, f.db, *p1)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Instantiated)
	assert.Empty(t, chargesFor(t, f.db, p1.ID))
}

func TestRollChargesIsIdempotentPerPeriod(t *testing.T) {
	f := setupTest(t, time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC))
	f.schedule(t, true, day(2025, 1, 1), nil, "500")

	p1, err := f.periods.GetOrCreateCurrent(f.ctx)
	require.NoError(t, err)
	_, err = f.charges.RollCharges(f.ctx, f.db, *p1)
	require.NoError(t, err)
	again, err := f.charges.RollCharges(f.ctx, f.db, *p1)
	require.NoError(t, err)
	assert.Equal(t, domain.RollResult{}, *again)
	assert.Len(t, chargesFor(t, f.db, p1.ID), 1)

	open, err := f.charges.ListOpen(f.ctx)
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestCoversRespectsStatus(t *testing.T) {
	s := domain.ChargeSchedule{Status: domain.ScheduleStatusClosed, StartDate: day(2025, 1, 1)}
	assert.False(t, s.Covers(day(2025, 1, 31)))
	s.Status = domain.ScheduleStatusOpen
	assert.True(t, s.Covers(day(2025, 1, 31)))
	assert.False(t, s.Covers(day(2024, 12, 31)))
}
