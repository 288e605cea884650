package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"luxlife-studio/pkg/errutil"
	"luxlife-studio/pkg/lock"
	"luxlife-studio/pkg/task"
	"luxlife-studio/services/credit"
	"luxlife-studio/services/order"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// HandleOrderCreated processes the creation notification of a pending
// order: it debits one credit and confirms the portrait exists.
func (e *Engine) HandleOrderCreated(ctx context.Context, t *asynq.Task) error {
	p, err := task.DecodeOrderPayload(t)
	if err != nil {
		return err
	}

	ctx, span := e.tracer.Start(ctx, "workflow.order_created", trace.WithAttributes(attribute.String("order_id", p.OrderID)))
	defer span.End()

	o, lease, err := e.claim(ctx, p.OrderID, order.StatusPending)
	if err != nil || o == nil {
		return err
	}
	defer e.release(ctx, o.ID, lease)

	return e.validate(ctx, o, lease)
}

func (e *Engine) validate(ctx context.Context, o *order.Order, lease lock.Lease) error {
	log := zap.L().With(zap.String("order_id", o.ID), zap.String("user_id", o.UserID))

	if missing := missingFields(o); len(missing) > 0 {
		log.Warn("order missing required fields", zap.Strings("missing", missing))
		return e.fail(ctx, o, failure{
			code:    CodeMissingFields,
			message: "Order is missing required fields: " + strings.Join(missing, ", "),
			stage:   stageValidation,
			cause:   &errutil.ValidationError{Code: CodeMissingFields, Message: "missing required fields", Fields: missing},
		})
	}

	if err := e.ledger.Debit(ctx, o.UserID, o.ID); err != nil && !errors.Is(err, credit.ErrAlreadyApplied) {
		var cerr *errutil.CreditError
		if errors.As(err, &cerr) {
			return e.fail(ctx, o, failure{
				code:    cerr.Code,
				message: cerr.Message,
				stage:   stageValidation,
				notify:  true,
				cause:   err,
			})
		}
		return e.fail(ctx, o, failure{
			code:    CodeValidationError,
			message: err.Error(),
			stage:   stageValidation,
			notify:  true,
			cause:   err,
		})
	}

	queued, err := e.orders.Transition(ctx, o.ID, []order.Status{order.StatusPending}, order.StatusQueuedValidation, func(o *order.Order) {
		o.Debited = true
		st := o.Stages()
		st.Validation.State = order.StageRunning
		st.Validation.UpdatedAt = e.now()
		o.SetStages(st)
	})
	if err != nil {
		return e.failValidation(ctx, o, err)
	}
	log.Info("order received; queued for validation", zap.String("scene_id", o.SceneID))

	exists, err := e.storage.Exists(ctx, queued.SourcePath)
	if err != nil {
		return e.failValidation(ctx, queued, err)
	}
	if !exists {
		log.Warn("order source file not found in storage", zap.String("source_path", queued.SourcePath))
		return e.fail(ctx, queued, failure{
			code:    CodeMissingFile,
			message: fmt.Sprintf("Source file %s not found in storage.", queued.SourcePath),
			notice:  MissingFileNotice,
			stage:   stageValidation,
			refund:  true,
			notify:  true,
			cause:   &errutil.ValidationError{Code: CodeMissingFile, Message: "source file missing", Fields: []string{"sourcePath"}},
		})
	}

	// The next transition publishes the generation trigger, whose handler
	// must be able to take the lock.
	e.release(ctx, o.ID, lease)

	if _, err := e.orders.Transition(ctx, o.ID, []order.Status{order.StatusQueuedValidation}, order.StatusQueuedGeneration, func(o *order.Order) {
		st := o.Stages()
		st.Validation.State = order.StageComplete
		st.Validation.UpdatedAt = e.now()
		o.SetStages(st)
	}); err != nil {
		// The status change committed but its notification was lost.
		if current, gerr := e.orders.Get(ctx, o.ID); gerr == nil && current.Status == order.StatusQueuedGeneration {
			log.Warn("generation notification failed; publishing again", zap.Error(err))
			if err := e.orders.PublishQueuedGeneration(ctx, o.ID, order.StatusQueuedValidation); err != nil && !errors.Is(err, task.ErrAlreadyQueued) {
				return err
			}
			return nil
		}
		return e.failValidation(ctx, queued, err)
	}

	log.Info("order validation complete; queued for generation", zap.String("source_path", queued.SourcePath))
	return nil
}

// failValidation handles unexpected errors after the debit.
func (e *Engine) failValidation(ctx context.Context, o *order.Order, err error) error {
	zap.L().Error("validation stage failed", zap.String("order_id", o.ID), zap.Error(err))
	return e.fail(ctx, o, failure{
		code:    CodeValidationError,
		message: err.Error(),
		stage:   stageValidation,
		refund:  true,
		notify:  true,
		cause:   err,
	})
}

func missingFields(o *order.Order) []string {
	var missing []string
	if strings.TrimSpace(o.UserID) == "" {
		missing = append(missing, "uid")
	}
	if strings.TrimSpace(o.SourcePath) == "" {
		missing = append(missing, "sourcePath")
	}
	return missing
}
