// Package workflow drives an order from creation to a delivered video: credit
// debit, asset validation, background generation with fallback, voice-over,
// animation, composition, upload and notification, refunding the credit on
// any failure after the debit.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"luxlife-studio/pkg/config"
	"luxlife-studio/pkg/errutil"
	"luxlife-studio/pkg/featureflags"
	"luxlife-studio/pkg/lock"
	"luxlife-studio/pkg/sentry"
	"luxlife-studio/services/order"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	CodeMissingFields     = "validation_missing_fields"
	CodeMissingFile       = "validation_missing_file"
	CodeValidationError   = "validation_error"
	CodeConfigMissing     = "generation_config_missing"
	CodeAnimationConfig   = "generation_animation_config_missing"
	CodeGenerationFailure = "generation_pipeline_error"

	MissingFileNotice = "Portrait upload was missing. Please retry the upload."

	signedURLTTL = time.Hour
)

type Engine struct {
	orders     Orders
	ledger     Ledger
	storage    Storage
	background BackgroundGenerator
	voice      VoiceSynthesizer
	animator   Animator
	composer   Composer
	notifier   Notifier
	locker     lock.Locker
	flags      featureflags.FeatureFlag
	reporter   sentry.Reporter
	tracer     trace.Tracer
	cfg        *config.Config
	now        func() time.Time
}

type Params struct {
	fx.In
	Config     *config.Config
	Orders     Orders
	Ledger     Ledger
	Storage    Storage
	Background BackgroundGenerator
	Voice      VoiceSynthesizer
	Animator   Animator
	Composer   Composer
	Notifier   Notifier
	Locker     lock.Locker
	Flags      featureflags.FeatureFlag
	Reporter   sentry.Reporter
	Tracer     trace.TracerProvider
}

func New(p Params) *Engine {
	reporter := p.Reporter
	if reporter == nil {
		reporter = sentry.Nop()
	}
	return &Engine{
		orders:     p.Orders,
		ledger:     p.Ledger,
		storage:    p.Storage,
		background: p.Background,
		voice:      p.Voice,
		animator:   p.Animator,
		composer:   p.Composer,
		notifier:   p.Notifier,
		locker:     p.Locker,
		flags:      p.Flags,
		reporter:   reporter,
		tracer:     p.Tracer.Tracer("luxlife-studio/workflow"),
		cfg:        p.Config,
		now:        time.Now,
	}
}

// claim loads the order, checks it is in want and takes the per-order lock.
// A nil order with a nil error means the notification is stale and must be
// ignored. A held lock is returned as lock.ErrNotAcquired so the task is
// retried once the holder lets go.
func (e *Engine) claim(ctx context.Context, id string, want order.Status) (*order.Order, lock.Lease, error) {
	log := zap.L().With(zap.String("order_id", id))

	o, err := e.orders.Get(ctx, id)
	if err != nil {
		if errutil.StatusOf(err) == errutil.StatusNotFound {
			log.Warn("order not found; notification ignored")
			return nil, nil, nil
		}
		return nil, nil, err
	}
	if o.Status != want {
		log.Debug("order not in expected state; notification ignored", zap.String("status", string(o.Status)), zap.String("want", string(want)))
		return nil, nil, nil
	}

	lease, err := e.locker.Acquire(ctx, id, e.cfg.Worker.LockTTL)
	if errors.Is(err, lock.ErrNotAcquired) {
		log.Info("order is being processed by another worker")
		return nil, nil, fmt.Errorf("order %s: %w", id, err)
	}
	if err != nil {
		return nil, nil, err
	}

	// The status may have moved while the lock was contended.
	o, err = e.orders.Get(ctx, id)
	if err != nil || o.Status != want {
		e.release(ctx, id, lease)
		return nil, nil, err
	}
	return o, lease, nil
}

func (e *Engine) release(ctx context.Context, id string, lease lock.Lease) {
	if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
		zap.L().Warn("failed to release order lock", zap.String("order_id", id), zap.Error(err))
	}
}
