package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/itfy/evoting/internal/cache"
	"github.com/itfy/evoting/internal/clock"
	"github.com/itfy/evoting/internal/config"
	"github.com/itfy/evoting/internal/logger"
	"github.com/itfy/evoting/internal/migration"
	"github.com/itfy/evoting/internal/observability"
	"github.com/itfy/evoting/internal/server"
	"github.com/itfy/evoting/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		cache.Module,

		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
