package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/commission/internal/deal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Agent{}, &domain.Deal{}, &domain.SplitRule{}))
	return db
}

func TestLoadWithRules(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	agentB := int64(11)

	require.NoError(t, db.Create(&domain.Deal{ID: 1, OrgID: 7, Code: "D1", Name: "Deal 1", AgentID: 10}).Error)
	require.NoError(t, db.Create(&domain.Deal{ID: 2, OrgID: 8, Code: "D2", Name: "Other org", AgentID: 10}).Error)
	require.NoError(t, db.Create(&[]domain.SplitRule{
		{ID: 101, OrgID: 7, DealID: 1, AgentID: &agentB, Percentage: decimal.NewFromInt(30), Position: 2},
		{ID: 102, OrgID: 7, DealID: 1, Percentage: decimal.RequireFromString("12.5"), Position: 1},
		{ID: 103, OrgID: 8, DealID: 2, Percentage: decimal.NewFromInt(50)},
	}).Error)

	repo := Provide()
	deals, err := repo.LoadWithRules(ctx, db, 7, []int64{1, 2})
	require.NoError(t, err)
	require.Len(t, deals, 1)

	d := deals[1]
	require.NotNil(t, d)
	assert.Equal(t, int64(10), d.AgentID)
	require.Len(t, d.Rules, 2)
	assert.Equal(t, int64(102), d.Rules[0].ID)
	assert.Nil(t, d.Rules[0].AgentID)
	assert.True(t, d.Rules[0].Percentage.Equal(decimal.RequireFromString("12.5")))
	require.NotNil(t, d.Rules[1].AgentID)
	assert.Equal(t, agentB, *d.Rules[1].AgentID)

	empty, err := repo.LoadWithRules(ctx, db, 7, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFindAgents(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&domain.Agent{ID: 10, OrgID: 7, Code: "jane", FirstName: "Jane", LastName: "Doe"}).Error)

	agents, err := Provide().FindAgents(context.Background(), db, 7, []int64{10, 99})
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.Equal(t, "Jane", agents[10].FirstName)
}
