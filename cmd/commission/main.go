package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/commission/internal/clock"
	"github.com/smallbiznis/commission/internal/config"
	"github.com/smallbiznis/commission/internal/migration"
	"github.com/smallbiznis/commission/internal/observability"
	"github.com/smallbiznis/commission/internal/server"
	"github.com/smallbiznis/commission/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}
