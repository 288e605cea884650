package workflow

import (
	"context"
	"errors"

	"luxlife-studio/pkg/lock"
	"luxlife-studio/services/order"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const CodeStalled = "pipeline_stalled"

var errStalled = errors.New("order processing stopped before an outcome was recorded")

// Recover fails an order left in status by a worker that stopped without
// recording an outcome. An order whose lock is still held is being worked on
// and is left alone.
func (e *Engine) Recover(ctx context.Context, id string, status order.Status) error {
	ctx, span := e.tracer.Start(ctx, "workflow.recover", trace.WithAttributes(
		attribute.String("order_id", id),
		attribute.String("status", string(status)),
	))
	defer span.End()

	o, lease, err := e.claim(ctx, id, status)
	if errors.Is(err, lock.ErrNotAcquired) {
		return nil
	}
	if err != nil || o == nil {
		return err
	}
	defer e.release(ctx, o.ID, lease)

	zap.L().Warn("recovering stalled order", zap.String("order_id", o.ID), zap.String("status", string(status)))

	st := stageGeneration
	if status == order.StatusQueuedValidation {
		st = stageValidation
	}
	return e.fail(ctx, o, failure{
		code:    CodeStalled,
		message: "Order processing stopped before completion.",
		stage:   st,
		refund:  o.Debited,
		notify:  true,
		cause:   errStalled,
	})
}
