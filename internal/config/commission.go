package config

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Over-allocation policies for deals whose split rules add up to more
// than 100 percent.
const (
	OverAllocationReject = "reject"
	OverAllocationScale  = "scale"
	OverAllocationAllow  = "allow"
)

// CommissionConfig holds the tunables of the commission pipeline.
type CommissionConfig struct {
	OverAllocationPolicy string        `mapstructure:"overAllocationPolicy"`
	RoundingPlaces       int32         `mapstructure:"roundingPlaces"`
	BatchSize            int           `mapstructure:"batchSize"`
	CommitLockTTL        time.Duration `mapstructure:"commitLockTTL"`
	Currency             string        `mapstructure:"currency"`
}

func DefaultCommissionConfig() CommissionConfig {
	return CommissionConfig{
		OverAllocationPolicy: OverAllocationReject,
		RoundingPlaces:       2,
		BatchSize:            500,
		CommitLockTTL:        30 * time.Second,
		Currency:             "AUD",
	}
}

type CommissionConfigHolder struct {
	current atomic.Value // holds CommissionConfig
}

// NewStaticCommissionConfigHolder wraps a fixed config. Used by tests and
// tools that never read commission.yml.
func NewStaticCommissionConfigHolder(cfg CommissionConfig) *CommissionConfigHolder {
	holder := &CommissionConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewCommissionConfigHolder(log *zap.Logger) (*CommissionConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("commission")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/commission")
	v.AddConfigPath(".")

	v.SetEnvPrefix("COMMISSION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultCommissionConfig()
	v.SetDefault("commission.overAllocationPolicy", defaults.OverAllocationPolicy)
	v.SetDefault("commission.roundingPlaces", defaults.RoundingPlaces)
	v.SetDefault("commission.batchSize", defaults.BatchSize)
	v.SetDefault("commission.commitLockTTL", defaults.CommitLockTTL)
	v.SetDefault("commission.currency", defaults.Currency)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileLoaded = false
	}

	var cfg CommissionConfig
	if err := v.UnmarshalKey("commission", &cfg); err != nil {
		return nil, err
	}
	if err := ValidateCommissionConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticCommissionConfigHolder(cfg)
	if !fileLoaded {
		return holder, nil
	}

	log = log.Named("config.commission")
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated CommissionConfig
		if err := v.UnmarshalKey("commission", &updated); err != nil {
			log.Warn("reload failed", zap.Error(err))
			return
		}
		if err := ValidateCommissionConfig(updated); err != nil {
			log.Warn("invalid config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *CommissionConfigHolder) Get() CommissionConfig {
	return h.current.Load().(CommissionConfig)
}

func ValidateCommissionConfig(cfg CommissionConfig) error {
	switch cfg.OverAllocationPolicy {
	case OverAllocationReject, OverAllocationScale, OverAllocationAllow:
	default:
		return fmt.Errorf("commission.overAllocationPolicy %q is not one of reject, scale, allow", cfg.OverAllocationPolicy)
	}
	if cfg.RoundingPlaces < 0 || cfg.RoundingPlaces > 6 {
		return errors.New("commission.roundingPlaces must be between 0 and 6")
	}
	if cfg.BatchSize <= 0 {
		return errors.New("commission.batchSize must be positive")
	}
	if cfg.CommitLockTTL <= 0 {
		return errors.New("commission.commitLockTTL must be positive")
	}
	if strings.TrimSpace(cfg.Currency) == "" {
		return errors.New("commission.currency cannot be empty")
	}
	return nil
}
