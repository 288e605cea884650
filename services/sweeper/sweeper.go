// Package sweeper republishes the trigger of orders that sit in a triggered
// state for too long, which happens when a notification was lost between
// the status write and the queue. Orders left in a working state by a
// worker that died are failed and refunded.
package sweeper

import (
	"context"
	"errors"
	"time"

	"luxlife-studio/pkg/config"
	"luxlife-studio/pkg/task"
	"luxlife-studio/services/order"
	"luxlife-studio/services/workflow"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const batchSize = 100

var Module = fx.Module("sweeper",
	fx.Provide(
		func(s *order.Service) Orders { return s },
		func(e *workflow.Engine) Recoverer { return e },
		New,
	),
	fx.Invoke(Start),
)

type Orders interface {
	Stale(ctx context.Context, statuses []order.Status, before time.Time, limit int) ([]*order.Order, error)
	PublishCreated(ctx context.Context, orderID string) error
	PublishQueuedGeneration(ctx context.Context, id string, before order.Status) error
}

type Recoverer interface {
	Recover(ctx context.Context, id string, status order.Status) error
}

var (
	triggered = []order.Status{order.StatusPending, order.StatusQueuedGeneration}
	working   = []order.Status{order.StatusQueuedValidation, order.StatusGeneratingBackground, order.StatusProcessing}
)

type Sweeper struct {
	orders     Orders
	recoverer  Recoverer
	interval   time.Duration
	staleAfter time.Duration
	// Working orders are only touched once their lock could have expired.
	stalledAfter time.Duration
	now          func() time.Time
}

func New(orders Orders, recoverer Recoverer, cfg *config.Config) *Sweeper {
	return &Sweeper{
		orders:       orders,
		recoverer:    recoverer,
		interval:     cfg.Worker.SweepInterval,
		staleAfter:   cfg.Worker.StaleAfter,
		stalledAfter: max(cfg.Worker.StaleAfter, cfg.Worker.LockTTL),
		now:          time.Now,
	}
}

func Start(lc fx.Lifecycle, s *Sweeper) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				s.run(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return nil
		},
	})
}

func (s *Sweeper) run(ctx context.Context) {
	zap.L().Info("[Sweeper] started", zap.Duration("interval", s.interval), zap.Duration("stale_after", s.staleAfter))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			start := time.Now()
			res, err := s.Sweep(ctx)
			if err != nil {
				zap.L().Error("[Sweeper] sweep failed", zap.Error(err))
				continue
			}
			if res.Republished > 0 || res.Recovered > 0 {
				zap.L().Info("[Sweeper] swept stale orders",
					zap.Int("republished", res.Republished),
					zap.Int("already_queued", res.AlreadyQueued),
					zap.Int("recovered", res.Recovered),
					zap.Duration("duration", time.Since(start)),
				)
			}
		case <-ctx.Done():
			zap.L().Info("[Sweeper] stopped")
			return
		}
	}
}

type Result struct {
	Republished int
	// AlreadyQueued counts stale orders whose trigger is still waiting in
	// the queue.
	AlreadyQueued int
	Recovered     int
}

// Sweep handles one batch of each kind of stale order. The handlers' status
// guards make a duplicate trigger harmless.
func (s *Sweeper) Sweep(ctx context.Context) (Result, error) {
	var res Result

	stale, err := s.orders.Stale(ctx, triggered, s.now().Add(-s.staleAfter), batchSize)
	if err != nil {
		return res, err
	}
	for _, o := range stale {
		switch o.Status {
		case order.StatusPending:
			err = s.orders.PublishCreated(ctx, o.ID)
		case order.StatusQueuedGeneration:
			err = s.orders.PublishQueuedGeneration(ctx, o.ID, order.StatusQueuedValidation)
		}
		switch {
		case errors.Is(err, task.ErrAlreadyQueued):
			res.AlreadyQueued++
		case err != nil:
			zap.L().Warn("[Sweeper] failed to republish trigger", zap.String("order_id", o.ID), zap.String("status", string(o.Status)), zap.Error(err))
		default:
			res.Republished++
		}
	}

	stalled, err := s.orders.Stale(ctx, working, s.now().Add(-s.stalledAfter), batchSize)
	if err != nil {
		return res, err
	}
	for _, o := range stalled {
		if err := s.recoverer.Recover(ctx, o.ID, o.Status); err != nil {
			zap.L().Warn("[Sweeper] failed to recover stalled order", zap.String("order_id", o.ID), zap.String("status", string(o.Status)), zap.Error(err))
			continue
		}
		res.Recovered++
	}
	return res, nil
}
