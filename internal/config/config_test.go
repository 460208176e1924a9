package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_TYPE", "sqlite")
	t.Setenv("DATABASE_MAX_OPEN_CONN", "not-a-number")
	t.Setenv("DATABASE_AUTO_MIGRATE", "off")

	cfg := Load()
	assert.Equal(t, "sqlite", cfg.DBType)
	assert.Equal(t, 20, cfg.DBMaxOpenConn)
	assert.False(t, cfg.DBAutoMigrate)
	assert.False(t, cfg.RedisEnabled())
}

func TestValidateCommissionConfig(t *testing.T) {
	assert.NoError(t, ValidateCommissionConfig(DefaultCommissionConfig()))

	bad := DefaultCommissionConfig()
	bad.OverAllocationPolicy = "ignore"
	assert.Error(t, ValidateCommissionConfig(bad))

	bad = DefaultCommissionConfig()
	bad.BatchSize = 0
	assert.Error(t, ValidateCommissionConfig(bad))

	bad = DefaultCommissionConfig()
	bad.CommitLockTTL = 0
	assert.Error(t, ValidateCommissionConfig(bad))

	bad.CommitLockTTL = -time.Second
	assert.Error(t, ValidateCommissionConfig(bad))
}

func TestCommissionConfigHolderReadsFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("commission:\n  overAllocationPolicy: scale\n  roundingPlaces: 4\n  batchSize: 100\n  commitLockTTL: 10s\n  currency: NZD\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "commission.yml"), content, 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	holder, err := NewCommissionConfigHolder(zap.NewNop())
	require.NoError(t, err)

	cfg := holder.Get()
	assert.Equal(t, OverAllocationScale, cfg.OverAllocationPolicy)
	assert.Equal(t, int32(4), cfg.RoundingPlaces)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 10*time.Second, cfg.CommitLockTTL)
	assert.Equal(t, "NZD", cfg.Currency)
}

func TestCommissionConfigHolderDefaultsWithoutFile(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	holder, err := NewCommissionConfigHolder(zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, DefaultCommissionConfig(), holder.Get())
}
