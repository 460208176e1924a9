package lock

import (
	"context"
	"fmt"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/commission/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("lock",
	fx.Provide(NewRedisLocker),
)

const keyJournalCommit = "commission:commit:lock:%d:%d"

// JournalCommitKey is the lock key guarding one journal's commit.
func JournalCommitKey(orgID, journalID int64) string {
	return fmt.Sprintf(keyJournalCommit, orgID, journalID)
}

// NewRedisLocker connects to redis when it is configured. Without redis it
// returns a nil Locker and commits rely on row locks alone.
func NewRedisLocker(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*Locker, error) {
	if !cfg.RedisEnabled() {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	log = log.Named("lock")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis ping: %w", err)
			}
			log.Info("redis lock enabled", zap.String("addr", cfg.RedisAddr))
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return NewLocker(client), nil
}
