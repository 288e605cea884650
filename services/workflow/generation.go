package workflow

import (
	"context"
	"fmt"
	"os"

	"luxlife-studio/pkg/errutil"
	"luxlife-studio/pkg/featureflags"
	"luxlife-studio/pkg/task"
	"luxlife-studio/services/composer"
	"luxlife-studio/services/notify"
	"luxlife-studio/services/order"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// HandleQueuedGeneration runs the generation stage once per order, on the
// update notification that moved it into queued_generation.
func (e *Engine) HandleQueuedGeneration(ctx context.Context, t *asynq.Task) error {
	p, err := task.DecodeOrderPayload(t)
	if err != nil {
		return err
	}
	if p.AfterStatus != string(order.StatusQueuedGeneration) || p.BeforeStatus == string(order.StatusQueuedGeneration) {
		return nil
	}

	ctx, span := e.tracer.Start(ctx, "workflow.generation", trace.WithAttributes(attribute.String("order_id", p.OrderID)))
	defer span.End()

	o, lease, err := e.claim(ctx, p.OrderID, order.StatusQueuedGeneration)
	if err != nil || o == nil {
		return err
	}
	defer e.release(ctx, o.ID, lease)

	if cerr := e.checkConfig(); cerr != nil {
		zap.L().Error("generation configuration missing", zap.String("order_id", o.ID), zap.Strings("missing", cerr.Missing))
		return e.fail(ctx, o, failure{
			code:    cerr.Code,
			message: configMessage(cerr.Code),
			stage:   stageGeneration,
			refund:  o.Debited,
			cause:   cerr,
		})
	}

	scratch, err := e.composer.NewScratch(o.ID)
	if err != nil {
		return e.failGeneration(ctx, o, err)
	}
	defer scratch.Release()

	if err := e.generate(ctx, o, scratch); err != nil {
		return e.failGeneration(ctx, o, err)
	}
	return nil
}

func (e *Engine) failGeneration(ctx context.Context, o *order.Order, err error) error {
	zap.L().Error("generation pipeline failed", zap.String("order_id", o.ID), zap.Error(err))
	return e.fail(ctx, o, failure{
		code:    CodeGenerationFailure,
		message: err.Error(),
		stage:   stageGeneration,
		refund:  o.Debited,
		notify:  true,
		cause:   err,
	})
}

func (e *Engine) checkConfig() *errutil.ConfigError {
	var missing []string
	if e.cfg.Replicate.APIToken == "" {
		missing = append(missing, "REPLICATE.API_TOKEN")
	}
	if e.cfg.Replicate.ModelVersion == "" {
		missing = append(missing, "REPLICATE.MODEL_VERSION")
	}
	if len(missing) > 0 {
		return &errutil.ConfigError{Code: CodeConfigMissing, Missing: missing}
	}
	if e.cfg.DID.APIKey == "" {
		return &errutil.ConfigError{Code: CodeAnimationConfig, Missing: []string{"DID.API_KEY"}}
	}
	return nil
}

func configMessage(code string) string {
	if code == CodeAnimationConfig {
		return "D-ID API key missing. Configure DID_API_KEY to enable animation."
	}
	return "Replicate configuration missing. Please set API token and model version."
}

func (e *Engine) generate(ctx context.Context, o *order.Order, scratch *composer.Scratch) error {
	log := zap.L().With(zap.String("order_id", o.ID), zap.String("user_id", o.UserID))
	prompt := BuildPrompt(o)

	o, err := e.orders.Transition(ctx, o.ID, []order.Status{order.StatusQueuedGeneration}, order.StatusGeneratingBackground, func(o *order.Order) {
		st := o.Stages()
		st.Generation.State = order.StageRunning
		st.Generation.Prompt = prompt
		st.Generation.Fallback = order.Fallback{}
		st.Generation.UpdatedAt = e.now()
		o.SetStages(st)
	})
	if err != nil {
		return err
	}

	backgroundURL, record, fallback := e.generateBackground(ctx, o, prompt)

	script := VoiceScript(o)
	o, err = e.orders.Transition(ctx, o.ID, []order.Status{order.StatusGeneratingBackground}, order.StatusProcessing, func(o *order.Order) {
		now := e.now()
		o.BackgroundURL = backgroundURL
		st := o.Stages()
		st.Generation.Replicate = record
		st.Generation.Fallback = fallback
		st.Generation.UpdatedAt = now
		st.Voice.State = order.StageRunning
		st.Voice.Script = script
		st.Voice.UpdatedAt = now
		o.SetStages(st)
	})
	if err != nil {
		return err
	}

	audioPath, audioURL, err := e.synthesizeVoice(ctx, o, scratch, script)
	if err != nil {
		return err
	}

	imageURL, err := e.storage.SignedURL(ctx, o.SourcePath, signedURLTTL)
	if err != nil {
		return err
	}

	animationURL, err := e.animate(ctx, o, imageURL, audioURL)
	if err != nil {
		return err
	}

	composed, err := e.composer.Compose(ctx, scratch, backgroundURL, animationURL, audioPath)
	if err != nil {
		return err
	}

	final, err := e.storage.Upload(ctx, composed, mediaPath(o, "final.mp4"), "video/mp4")
	if err != nil {
		return err
	}

	o, err = e.orders.Transition(ctx, o.ID, []order.Status{order.StatusProcessing}, order.StatusComplete, func(o *order.Order) {
		now := e.now()
		o.OutputURL = final.URL
		o.OutputPath = final.Path
		o.CompletedAt = &now
		st := o.Stages()
		st.Generation.State = order.StageComplete
		st.Generation.UpdatedAt = now
		o.SetStages(st)
	})
	if err != nil {
		return err
	}
	log.Info("order complete", zap.String("output_path", final.Path), zap.Bool("fallback", fallback.Used))

	e.notifier.Completed(ctx, notify.Completion{
		Email:            o.Email,
		OrderID:          o.ID,
		Scene:            o.SceneLabel(),
		VideoURL:         final.URL,
		FallbackUsed:     fallback.Used,
		FallbackReason:   fallback.Reason,
		FallbackStrategy: fallback.Strategy,
	})
	return nil
}

// generateBackground never fails the order: every problem is reported as a
// fallback and the order continues without a background.
func (e *Engine) generateBackground(ctx context.Context, o *order.Order, prompt string) (string, order.Replicate, order.Fallback) {
	log := zap.L().With(zap.String("order_id", o.ID))
	model := e.background.ModelVersion()

	if !e.flags.Enabled(ctx, featureflags.BackgroundGeneration, o.UserID) {
		log.Info("background generation disabled; using fallback animation delivery")
		return "", order.Replicate{ModelVersion: model, Status: "skipped"}, backgroundDisabled()
	}

	ctx, span := e.tracer.Start(ctx, "workflow.background")
	defer span.End()

	log.Info("starting background generation", zap.String("model_version", model))
	prediction, err := e.background.Submit(ctx, prompt)
	if err == nil {
		log.Info("replicate prediction created", zap.String("prediction_id", prediction.ID), zap.String("status", prediction.Status))
		if _, uerr := e.orders.Update(ctx, o.ID, func(o *order.Order) {
			st := o.Stages()
			st.Generation.Replicate = replicateRecord(prediction, model)
			o.SetStages(st)
		}); uerr != nil {
			log.Warn("failed to record replicate prediction", zap.Error(uerr))
		}
		prediction, err = e.background.Poll(ctx, prediction)
	}

	if err != nil {
		fallback := classifyBackgroundError(err)
		record := replicateRecord(prediction, model)
		record.Status = "failed"
		record.Error = err.Error()
		log.Warn("background generation failed; continuing with fallback animation", zap.String("reason_code", fallback.ReasonCode), zap.Error(err))
		span.RecordError(err)
		return "", record, fallback
	}

	url, fallback := evaluatePrediction(prediction)
	if fallback.Used {
		log.Info("background unusable; using fallback animation delivery", zap.String("reason_code", fallback.ReasonCode), zap.String("prediction_id", prediction.ID))
	}
	return url, replicateRecord(prediction, model), fallback
}

func (e *Engine) synthesizeVoice(ctx context.Context, o *order.Order, scratch *composer.Scratch, script string) (string, string, error) {
	audio, err := e.voice.Synthesize(ctx, script)
	if err != nil {
		return "", "", err
	}

	local := scratch.Path("voice.mp3")
	if err := os.WriteFile(local, audio, 0o600); err != nil {
		return "", "", fmt.Errorf("write voice-over: %w", err)
	}

	uploaded, err := e.storage.Upload(ctx, local, mediaPath(o, "voice.mp3"), "audio/mpeg")
	if err != nil {
		return "", "", err
	}
	signed, err := e.storage.SignedURL(ctx, uploaded.Path, signedURLTTL)
	if err != nil {
		return "", "", err
	}

	if _, err := e.orders.Update(ctx, o.ID, func(o *order.Order) {
		now := e.now()
		st := o.Stages()
		st.Voice.State = order.StageComplete
		st.Voice.StoragePath = uploaded.Path
		st.Voice.UpdatedAt = now
		o.SetStages(st)
	}); err != nil {
		return "", "", err
	}
	return local, signed, nil
}

func (e *Engine) animate(ctx context.Context, o *order.Order, imageURL, audioURL string) (string, error) {
	ctx, span := e.tracer.Start(ctx, "workflow.animation")
	defer span.End()

	talk, err := e.animator.Submit(ctx, imageURL, audioURL)
	if err != nil {
		return "", err
	}

	if _, err := e.orders.Update(ctx, o.ID, func(o *order.Order) {
		st := o.Stages()
		st.Animation.State = order.StageRunning
		st.Animation.TalkID = talk.ID
		st.Animation.UpdatedAt = e.now()
		o.SetStages(st)
	}); err != nil {
		return "", err
	}

	talk, err = e.animator.Poll(ctx, talk)
	if err != nil {
		return "", err
	}
	resultURL, err := talk.Result()
	if err != nil {
		return "", err
	}

	if _, err := e.orders.Update(ctx, o.ID, func(o *order.Order) {
		st := o.Stages()
		st.Animation.State = order.StageComplete
		st.Animation.ResultURL = resultURL
		st.Animation.UpdatedAt = e.now()
		o.SetStages(st)
	}); err != nil {
		return "", err
	}
	return resultURL, nil
}

func mediaPath(o *order.Order, name string) string {
	return fmt.Sprintf("videos/%s/%s/%s", o.UserID, o.ID, name)
}
