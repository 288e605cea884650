package workflow

import (
	"context"
	"errors"

	"luxlife-studio/pkg/errutil"
	"luxlife-studio/services/notify"
	"luxlife-studio/services/order"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type stage int

const (
	stageValidation stage = iota
	stageGeneration
)

type failure struct {
	code    string
	message string
	// notice replaces message in the owner email when set.
	notice string
	stage  stage
	refund bool
	notify bool
	cause  error
}

// fail refunds the credit when the order was debited, moves the order to
// failed and tells the owner. Refund and notification problems are logged
// and never change the outcome.
func (e *Engine) fail(ctx context.Context, o *order.Order, f failure) error {
	// Compensation must complete even when the task deadline has passed.
	ctx = context.WithoutCancel(ctx)
	log := zap.L().With(zap.String("order_id", o.ID), zap.String("user_id", o.UserID), zap.String("error_code", f.code))
	if f.cause != nil {
		log = log.With(zap.String("error_kind", string(errutil.KindOf(f.cause))))
	}

	refunded := o.Refunded
	if f.refund && !o.Refunded {
		refunded = e.ledger.Credit(ctx, o.UserID, o.ID)
	}

	now := e.now()
	updated, err := e.orders.Transition(ctx, o.ID, order.NonTerminal(), order.StatusFailed, func(o *order.Order) {
		o.ErrorCode = f.code
		o.ErrorMessage = f.message
		if refunded {
			o.Refunded = true
		}

		st := o.Stages()
		switch f.stage {
		case stageValidation:
			st.Validation.State = order.StageFailed
			st.Validation.Message = f.message
			st.Validation.UpdatedAt = now
		case stageGeneration:
			st.Generation.State = order.StageFailed
			st.Generation.UpdatedAt = now
		}
		if st.Voice.State == order.StageRunning {
			st.Voice.State = order.StageFailed
			st.Voice.UpdatedAt = now
		}
		if st.Animation.State == order.StageRunning {
			st.Animation.State = order.StageFailed
			st.Animation.UpdatedAt = now
		}
		o.SetStages(st)
	})
	if err != nil {
		log.Error("failed to mark order failed", zap.Error(err))
		return err
	}
	log.Warn("order failed", zap.String("error_message", f.message), zap.Bool("refunded", refunded))

	span := trace.SpanFromContext(ctx)
	cause := f.cause
	if cause == nil {
		cause = errors.New(f.message)
	}
	span.RecordError(cause)
	span.SetStatus(codes.Error, f.code)
	e.reporter.Capture(ctx, cause, map[string]string{
		"order_id":   o.ID,
		"error_code": f.code,
	})

	if f.notify {
		notice := f.notice
		if notice == "" {
			notice = f.message
		}
		e.notifier.Failed(ctx, notify.Failure{
			Email:    updated.Email,
			OrderID:  updated.ID,
			Message:  notice,
			Refunded: refunded,
		})
	}
	return nil
}
