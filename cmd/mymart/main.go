package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/mymart/internal/clock"
	"github.com/smallbiznis/mymart/internal/config"
	"github.com/smallbiznis/mymart/internal/migration"
	"github.com/smallbiznis/mymart/internal/observability"
	"github.com/smallbiznis/mymart/internal/server"
	"github.com/smallbiznis/mymart/pkg/db"
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

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
