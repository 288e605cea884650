package task

import (
	"context"

	"luxlife-studio/pkg/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"luxlife-studio/pkg/taskname"
)

var Client = fx.Module("asynq:client",
	fx.Provide(registerClient, registerInspector, NewEnqueuer),
)

// The client and inspector share the redis module's connection, which is
// closed there.
func registerClient(rdb *redis.Client) *asynq.Client {
	return asynq.NewClientFromRedisClient(rdb)
}

func registerInspector(rdb *redis.Client) *asynq.Inspector {
	return asynq.NewInspectorFromRedisClient(rdb)
}

var Server = fx.Module("asynq:server",
	fx.Provide(registerServerMux),
	fx.Invoke(registerAsynqServer),
)

func registerServerMux() *asynq.ServeMux {
	return asynq.NewServeMux()
}

func redisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
}

func registerAsynqServer(lc fx.Lifecycle, cfg *config.Config, mux *asynq.ServeMux) {
	server := asynq.NewServer(
		redisOpt(cfg),
		asynq.Config{
			Concurrency:    cfg.Worker.Concurrency,
			RetryDelayFunc: asynq.DefaultRetryDelayFunc,
			Queues: map[string]int{
				taskname.QueueCritical: 6,
				taskname.QueueDefault:  3,
				taskname.QueueLow:      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				zap.L().Error("asynq task failed", zap.String("task_type", task.Type()), zap.ByteString("payload", task.Payload()), zap.Error(err))
			}),
			Logger: &zapAsynqLogger{log: zap.L().Named("asynq").Sugar()},
		},
	)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := server.Start(mux); err != nil {
				zap.L().Error("[Asynq] Failed to start Asynq server", zap.Error(err))
				return err
			}
			zap.L().Info("[Asynq] Asynq server started", zap.String("addr", cfg.Redis.Addr), zap.Int("concurrency", cfg.Worker.Concurrency))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			server.Shutdown()
			return nil
		},
	})
}

type zapAsynqLogger struct {
	log *zap.SugaredLogger
}

func (l *zapAsynqLogger) Debug(args ...interface{}) { l.log.Debug(args...) }
func (l *zapAsynqLogger) Info(args ...interface{})  { l.log.Info(args...) }
func (l *zapAsynqLogger) Warn(args ...interface{})  { l.log.Warn(args...) }
func (l *zapAsynqLogger) Error(args ...interface{}) { l.log.Error(args...) }
func (l *zapAsynqLogger) Fatal(args ...interface{}) { l.log.Fatal(args...) }
