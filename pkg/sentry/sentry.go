// Package sentry reports terminal pipeline failures to Sentry.
package sentry

import (
	"context"
	"time"

	"luxlife-studio/pkg/config"

	sentrygo "github.com/getsentry/sentry-go"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("sentry", fx.Provide(New))

type Reporter interface {
	Capture(ctx context.Context, err error, tags map[string]string)
}

type nopReporter struct{}

func (nopReporter) Capture(context.Context, error, map[string]string) {}

// Nop discards every report.
func Nop() Reporter { return nopReporter{} }

type reporter struct {
	hub *sentrygo.Hub
}

// New initializes the Sentry client when a DSN is configured and returns a
// no-op reporter otherwise.
func New(lc fx.Lifecycle, cfg *config.Config) (Reporter, error) {
	if cfg.Sentry.DSN == "" {
		return Nop(), nil
	}

	if err := sentrygo.Init(sentrygo.ClientOptions{
		Dsn:         cfg.Sentry.DSN,
		Environment: cfg.AppEnv,
		Release:     cfg.AppVersion,
		ServerName:  cfg.AppName,
	}); err != nil {
		zap.L().Error("failed to init sentry", zap.Error(err))
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sentrygo.Flush(2 * time.Second)
			return nil
		},
	})
	return &reporter{hub: sentrygo.CurrentHub()}, nil
}

func (r *reporter) Capture(ctx context.Context, err error, tags map[string]string) {
	if err == nil {
		return
	}
	hub := sentrygo.GetHubFromContext(ctx)
	if hub == nil {
		hub = r.hub.Clone()
	}
	hub.WithScope(func(scope *sentrygo.Scope) {
		scope.SetTags(tags)
		hub.CaptureException(err)
	})
}
