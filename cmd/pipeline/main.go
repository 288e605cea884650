package main

import (
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"luxlife-studio/internal/httpapi"
	"luxlife-studio/pkg/config"
	"luxlife-studio/pkg/db"
	"luxlife-studio/pkg/featureflags"
	"luxlife-studio/pkg/gen"
	"luxlife-studio/pkg/hashistack/secretmanager"
	"luxlife-studio/pkg/health"
	"luxlife-studio/pkg/lock"
	"luxlife-studio/pkg/logger"
	"luxlife-studio/pkg/minio"
	"luxlife-studio/pkg/otelcol"
	"luxlife-studio/pkg/profiling"
	"luxlife-studio/pkg/redis"
	"luxlife-studio/pkg/sentry"
	"luxlife-studio/pkg/server"
	"luxlife-studio/pkg/task"
	"luxlife-studio/services/composer"
	"luxlife-studio/services/credit"
	"luxlife-studio/services/notify"
	"luxlife-studio/services/order"
	"luxlife-studio/services/sweeper"
	"luxlife-studio/services/workflow"
)

func main() {
	_ = godotenv.Load()

	app := fx.New(
		configModule(),
		logger.Module,
		fxLogger,
		otelcol.Module,
		profiling.Module,
		sentry.Module,
		featureflags.Module,
		db.Module,
		redis.Module,
		gen.Module,
		lock.Module,
		minio.Client,
		task.Client,
		task.Server,
		order.Module,
		credit.Module,
		composer.Module,
		notify.Module,
		workflow.Module,
		sweeper.Module,
		health.Module,
		server.ProvideHTTPServer,
		httpapi.Module,
	)

	app.Run()
}

// configModule reads secrets from Vault when VAULT_ADDR is set and from a
// remote provider when REMOTE_CONFIG_PROVIDER is set.
func configModule() fx.Option {
	opts := []fx.Option{}
	if _, ok := os.LookupEnv("VAULT_ADDR"); ok {
		opts = append(opts, secretmanager.Module)
	}
	if _, ok := os.LookupEnv("REMOTE_CONFIG_PROVIDER"); ok {
		return fx.Options(append(opts, config.RemoteModule)...)
	}
	return fx.Options(append(opts, config.Module)...)
}

var fxLogger = fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
	l := &fxevent.ZapLogger{Logger: log}
	l.UseLogLevel(zap.DebugLevel)
	return l
})
