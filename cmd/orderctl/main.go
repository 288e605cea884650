package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/fx"

	"luxlife-studio/internal/cli"
	"luxlife-studio/pkg/config"
	"luxlife-studio/pkg/db"
	"luxlife-studio/pkg/gen"
	"luxlife-studio/pkg/logger"
	"luxlife-studio/pkg/redis"
	"luxlife-studio/pkg/task"
	"luxlife-studio/services/credit"
	"luxlife-studio/services/order"
)

func main() {
	_ = godotenv.Load()

	if err := cli.NewRootCommand(open).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// open starts the storage and queue modules the commands need.
func open(ctx context.Context) (*cli.Backend, func(), error) {
	var b cli.Backend
	app := fx.New(
		config.Module,
		logger.Module,
		db.Module,
		redis.Module,
		gen.Module,
		task.Client,
		order.Module,
		credit.Module,
		fx.Populate(&b.Orders, &b.Credits),
		fx.NopLogger,
	)
	if err := app.Start(ctx); err != nil {
		return nil, nil, err
	}
	return &b, func() { _ = app.Stop(context.Background()) }, nil
}
