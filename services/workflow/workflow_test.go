package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"luxlife-studio/pkg/did"
	"luxlife-studio/pkg/errutil"
	"luxlife-studio/pkg/featureflags"
	"luxlife-studio/pkg/lock"
	"luxlife-studio/pkg/minio"
	"luxlife-studio/pkg/replicate"
	"luxlife-studio/pkg/task"
	"luxlife-studio/pkg/taskname"
	"luxlife-studio/services/composer"
	"luxlife-studio/services/credit"
	"luxlife-studio/services/notify"
	"luxlife-studio/services/order"
)

const (
	backgroundVideo = "https://replicate.delivery/pbxt/bg.mp4"
	animationVideo  = "https://d-id.example/talks/tlk_1.mp4"
	imageURL        = "https://storage.example/signed/portrait.jpg"
	audioURL        = "https://storage.example/signed/voice.mp3"
	finalURL        = "https://storage.example/media/final.mp4"
)

func prediction(status string, output ...string) *replicate.Prediction {
	p := &replicate.Prediction{ID: "pred_1", Status: status, Output: output}
	p.URLs.Get = "https://api.replicate.com/v1/predictions/pred_1"
	return p
}

// expectMedia wires the voice, animation, composition and upload steps of a
// successful run, composing with background. It returns the scratch
// directory so callers can check it is removed.
func (h *harness) expectMedia(o *order.Order, background string) *string {
	var dir string
	voicePath := mediaPath(o, "voice.mp3")
	finalPath := mediaPath(o, "final.mp4")

	h.composer.EXPECT().NewScratch(o.ID).DoAndReturn(func(id string) (*composer.Scratch, error) {
		s, err := composer.NewScratch(h.t.TempDir(), id)
		if s != nil {
			dir = s.Dir()
		}
		return s, err
	})
	h.voice.EXPECT().Synthesize(gomock.Any(), "Living my best life").Return([]byte("ID3-audio"), nil)
	h.storage.EXPECT().Upload(gomock.Any(), gomock.Any(), voicePath, "audio/mpeg").
		DoAndReturn(func(_ context.Context, local, path, _ string) (*minio.Uploaded, error) {
			data, err := os.ReadFile(local)
			require.NoError(h.t, err)
			require.Equal(h.t, "ID3-audio", string(data))
			return &minio.Uploaded{Path: path, Token: "tok-voice"}, nil
		})
	h.storage.EXPECT().SignedURL(gomock.Any(), voicePath, time.Hour).Return(audioURL, nil)
	h.storage.EXPECT().SignedURL(gomock.Any(), testSource, time.Hour).Return(imageURL, nil)
	h.animator.EXPECT().Submit(gomock.Any(), imageURL, audioURL).Return(&did.Talk{ID: "tlk_1", Status: did.StatusCreated}, nil)
	h.animator.EXPECT().Poll(gomock.Any(), gomock.Any()).Return(&did.Talk{ID: "tlk_1", Status: did.StatusDone, ResultURL: animationVideo}, nil)
	h.composer.EXPECT().Compose(gomock.Any(), gomock.Any(), background, animationVideo, gomock.Any()).
		DoAndReturn(func(_ context.Context, s *composer.Scratch, _, _, audio string) (string, error) {
			require.Equal(h.t, s.Path("voice.mp3"), audio)
			return s.Path("composed.mp4"), nil
		})
	h.storage.EXPECT().Upload(gomock.Any(), gomock.Any(), finalPath, "video/mp4").
		Return(&minio.Uploaded{Path: finalPath, Token: "tok-final", URL: finalURL}, nil)
	return &dir
}

func TestOrderCreated_MissingFields(t *testing.T) {
	h := newHarness(t)
	h.grant(2)
	o := h.create(order.CreateInput{UserID: testUser, Email: testEmail})

	h.runCreated(o.ID)

	got := h.get(o.ID)
	require.Equal(t, order.StatusFailed, got.Status)
	require.Equal(t, CodeMissingFields, got.ErrorCode)
	require.Equal(t, "Order is missing required fields: sourcePath", got.ErrorMessage)
	require.False(t, got.Debited)
	require.False(t, got.Refunded)
	require.Equal(t, order.StageFailed, got.Stages().Validation.State)
	require.Equal(t, int64(2), h.credits())
	require.Zero(t, h.entries(credit.EntryDebit))
}

func TestOrderCreated_CreditRejections(t *testing.T) {
	cases := []struct {
		name    string
		grant   int64
		code    string
		message string
	}{
		{
			name:    "no profile",
			code:    "user_profile_missing",
			message: "User profile missing credits configuration.",
		},
		{
			name:    "no credits",
			grant:   1,
			code:    "insufficient_credits",
			message: "Not enough credits to start generation. Purchase more to continue.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			if tc.grant > 0 {
				h.grant(tc.grant)
				// Spend the only credit on another order.
				require.NoError(t, h.ledger.Debit(h.ctx, testUser, "other-order"))
			}
			o := h.createDefault()

			h.notifier.EXPECT().Failed(gomock.Any(), notify.Failure{
				Email:   testEmail,
				OrderID: o.ID,
				Message: tc.message,
			})

			h.runCreated(o.ID)

			got := h.get(o.ID)
			require.Equal(t, order.StatusFailed, got.Status)
			require.Equal(t, tc.code, got.ErrorCode)
			require.Equal(t, tc.message, got.ErrorMessage)
			require.False(t, got.Debited)
			require.False(t, got.Refunded)
			require.Zero(t, h.entries(credit.EntryCredit))
		})
	}
}

func TestOrderCreated_MissingSourceRefunds(t *testing.T) {
	h := newHarness(t)
	h.grant(1)
	o := h.createDefault()

	h.storage.EXPECT().Exists(gomock.Any(), testSource).Return(false, nil)
	h.notifier.EXPECT().Failed(gomock.Any(), notify.Failure{
		Email:    testEmail,
		OrderID:  o.ID,
		Message:  MissingFileNotice,
		Refunded: true,
	})

	h.runCreated(o.ID)

	got := h.get(o.ID)
	require.Equal(t, order.StatusFailed, got.Status)
	require.Equal(t, CodeMissingFile, got.ErrorCode)
	require.Equal(t, fmt.Sprintf("Source file %s not found in storage.", testSource), got.ErrorMessage)
	require.True(t, got.Debited)
	require.True(t, got.Refunded)
	require.Equal(t, int64(1), h.credits())
	require.Equal(t, 1, h.entries(credit.EntryDebit))
	require.Equal(t, 1, h.entries(credit.EntryCredit))
	require.Zero(t, h.enqueuer.count(taskname.OrderQueuedGeneration))
}

func TestOrderCreated_StorageErrorRefunds(t *testing.T) {
	h := newHarness(t)
	h.grant(1)
	o := h.createDefault()

	h.storage.EXPECT().Exists(gomock.Any(), testSource).Return(false, errors.New("bucket unreachable"))
	h.notifier.EXPECT().Failed(gomock.Any(), notify.Failure{
		Email:    testEmail,
		OrderID:  o.ID,
		Message:  "bucket unreachable",
		Refunded: true,
	})

	h.runCreated(o.ID)

	got := h.get(o.ID)
	require.Equal(t, order.StatusFailed, got.Status)
	require.Equal(t, CodeValidationError, got.ErrorCode)
	require.Equal(t, int64(1), h.credits())
}

func TestOrderCreated_Validated(t *testing.T) {
	h := newHarness(t)
	h.grant(3)
	o := h.validated()

	got := h.get(o.ID)
	require.True(t, got.Debited)
	require.Equal(t, order.StageComplete, got.Stages().Validation.State)
	require.Equal(t, int64(2), h.credits())

	p, err := task.DecodeOrderPayload(h.enqueuer.last(t, taskname.OrderQueuedGeneration, o.ID))
	require.NoError(t, err)
	require.Equal(t, string(order.StatusQueuedValidation), p.BeforeStatus)
	require.Equal(t, string(order.StatusQueuedGeneration), p.AfterStatus)
}

func TestOrderCreated_RedeliveryIsIgnored(t *testing.T) {
	h := newHarness(t)
	h.grant(3)
	o := h.validated()

	// A second delivery finds the order past pending and touches nothing.
	h.runCreated(o.ID)

	require.Equal(t, order.StatusQueuedGeneration, h.get(o.ID).Status)
	require.Equal(t, int64(2), h.credits())
	require.Equal(t, 1, h.entries(credit.EntryDebit))
}

func TestOrderCreated_UnknownOrderIsIgnored(t *testing.T) {
	h := newHarness(t)
	tk, _, err := task.NewOrderCreatedTask("does-not-exist")
	require.NoError(t, err)
	require.NoError(t, h.engine.HandleOrderCreated(h.ctx, tk))
}

func TestOrderCreated_LockHeldIsRetried(t *testing.T) {
	h := newHarness(t)
	h.grant(1)
	o := h.createDefault()

	lease, err := h.locker.Acquire(h.ctx, o.ID, time.Minute)
	require.NoError(t, err)
	defer func() { _ = lease.Release(h.ctx) }()

	err = h.engine.HandleOrderCreated(h.ctx, h.enqueuer.last(t, taskname.OrderCreated, o.ID))
	require.ErrorIs(t, err, lock.ErrNotAcquired)

	require.Equal(t, order.StatusPending, h.get(o.ID).Status)
	require.Equal(t, int64(1), h.credits())
}

func TestGeneration_WithBackground(t *testing.T) {
	h := newHarness(t)
	h.grant(1)
	o := h.validated()

	h.background.EXPECT().Submit(gomock.Any(), BuildPrompt(o)).Return(prediction(replicate.StatusStarting), nil)
	h.background.EXPECT().Poll(gomock.Any(), gomock.Any()).Return(prediction(replicate.StatusSucceeded, backgroundVideo), nil)
	dir := h.expectMedia(o, backgroundVideo)
	h.notifier.EXPECT().Completed(gomock.Any(), notify.Completion{
		Email:    testEmail,
		OrderID:  o.ID,
		Scene:    "Rooftop Sunset",
		VideoURL: finalURL,
	})

	h.runGeneration(o.ID)

	got := h.get(o.ID)
	require.Equal(t, order.StatusComplete, got.Status)
	require.Equal(t, backgroundVideo, got.BackgroundURL)
	require.Equal(t, finalURL, got.OutputURL)
	require.Equal(t, mediaPath(o, "final.mp4"), got.OutputPath)
	require.NotNil(t, got.CompletedAt)
	require.False(t, got.Refunded)

	st := got.Stages()
	require.Equal(t, order.StageComplete, st.Generation.State)
	require.False(t, st.Generation.Fallback.Used)
	require.Equal(t, "pred_1", st.Generation.Replicate.PredictionID)
	require.Equal(t, "sdxl-v1", st.Generation.Replicate.ModelVersion)
	require.Equal(t, order.StageComplete, st.Voice.State)
	require.Equal(t, mediaPath(o, "voice.mp3"), st.Voice.StoragePath)
	require.Equal(t, "Living my best life", st.Voice.Script)
	require.Equal(t, order.StageComplete, st.Animation.State)
	require.Equal(t, "tlk_1", st.Animation.TalkID)
	require.Equal(t, animationVideo, st.Animation.ResultURL)

	require.Zero(t, h.credits())
	require.Zero(t, h.entries(credit.EntryCredit))
	require.NoDirExists(t, *dir)
}

func TestGeneration_Fallbacks(t *testing.T) {
	cases := []struct {
		name       string
		disabled   bool
		submitErr  error
		polled     *replicate.Prediction
		reasonCode string
		reason     string
	}{
		{
			name:       "still image",
			polled:     prediction(replicate.StatusSucceeded, "https://replicate.delivery/pbxt/out.png"),
			reasonCode: order.ReasonReplicateReturnedImage,
			reason:     "Background generator returned a still image.",
		},
		{
			name:       "prediction failed",
			polled:     &replicate.Prediction{ID: "pred_1", Status: replicate.StatusFailed, Error: "NSFW content detected"},
			reasonCode: order.ReasonReplicateGenerationFailed,
			reason:     "Background generator unavailable; delivered animation-only.",
		},
		{
			name:       "payment required",
			submitErr:  &errutil.ProviderError{Provider: "replicate", Operation: "create_prediction", StatusCode: http.StatusPaymentRequired, Body: "insufficient credit"},
			reasonCode: order.ReasonReplicateInsufficientCredits,
			reason:     "Background generator credits are currently exhausted.",
		},
		{
			name:       "server error",
			submitErr:  &errutil.ProviderError{Provider: "replicate", Operation: "create_prediction", StatusCode: http.StatusInternalServerError, Body: "boom"},
			reasonCode: order.ReasonReplicateGenerationFailed,
			reason:     "Background generator unavailable; delivered animation-only.",
		},
		{
			name:       "disabled",
			disabled:   true,
			reasonCode: order.ReasonBackgroundDisabled,
			reason:     "Background generation is temporarily disabled.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			h.grant(1)
			o := h.validated()

			switch {
			case tc.disabled:
				h.flags.disabled[featureflags.BackgroundGeneration] = true
			case tc.submitErr != nil:
				h.background.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(nil, tc.submitErr)
			default:
				h.background.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(prediction(replicate.StatusStarting), nil)
				h.background.EXPECT().Poll(gomock.Any(), gomock.Any()).Return(tc.polled, nil)
			}
			h.expectMedia(o, "")
			h.notifier.EXPECT().Completed(gomock.Any(), notify.Completion{
				Email:            testEmail,
				OrderID:          o.ID,
				Scene:            "Rooftop Sunset",
				VideoURL:         finalURL,
				FallbackUsed:     true,
				FallbackReason:   tc.reason,
				FallbackStrategy: order.StrategyAnimationOnly,
			})

			h.runGeneration(o.ID)

			got := h.get(o.ID)
			require.Equal(t, order.StatusComplete, got.Status)
			require.Empty(t, got.BackgroundURL)

			fb := got.Stages().Generation.Fallback
			require.True(t, fb.Used)
			require.Equal(t, tc.reasonCode, fb.ReasonCode)
			require.Equal(t, tc.reason, fb.Reason)
			require.Equal(t, order.StrategyAnimationOnly, fb.Strategy)
			require.Zero(t, h.credits())
		})
	}
}

func TestGeneration_AnimationFailureRefunds(t *testing.T) {
	h := newHarness(t)
	h.grant(1)
	o := h.validated()

	var dir string
	h.composer.EXPECT().NewScratch(o.ID).DoAndReturn(func(id string) (*composer.Scratch, error) {
		s, err := composer.NewScratch(t.TempDir(), id)
		dir = s.Dir()
		return s, err
	})
	h.background.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(prediction(replicate.StatusStarting), nil)
	h.background.EXPECT().Poll(gomock.Any(), gomock.Any()).Return(prediction(replicate.StatusSucceeded, backgroundVideo), nil)
	h.voice.EXPECT().Synthesize(gomock.Any(), gomock.Any()).Return([]byte("audio"), nil)
	h.storage.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), "audio/mpeg").
		DoAndReturn(func(_ context.Context, _, path, _ string) (*minio.Uploaded, error) {
			return &minio.Uploaded{Path: path}, nil
		})
	h.storage.EXPECT().SignedURL(gomock.Any(), gomock.Any(), time.Hour).Return("https://signed", nil).Times(2)
	h.animator.EXPECT().Submit(gomock.Any(), gomock.Any(), gomock.Any()).Return(&did.Talk{ID: "tlk_1", Status: did.StatusCreated}, nil)
	h.animator.EXPECT().Poll(gomock.Any(), gomock.Any()).Return(&did.Talk{ID: "tlk_1", Status: did.StatusError, Error: map[string]any{"description": "face not detected"}}, nil)
	h.notifier.EXPECT().Failed(gomock.Any(), notify.Failure{
		Email:    testEmail,
		OrderID:  o.ID,
		Message:  "face not detected",
		Refunded: true,
	})

	h.runGeneration(o.ID)

	got := h.get(o.ID)
	require.Equal(t, order.StatusFailed, got.Status)
	require.Equal(t, CodeGenerationFailure, got.ErrorCode)
	require.Equal(t, "face not detected", got.ErrorMessage)
	require.True(t, got.Refunded)

	st := got.Stages()
	require.Equal(t, order.StageFailed, st.Generation.State)
	require.Equal(t, order.StageComplete, st.Voice.State)
	require.Equal(t, order.StageFailed, st.Animation.State)

	require.Equal(t, int64(1), h.credits())
	require.Equal(t, 1, h.entries(credit.EntryCredit))
	require.NoDirExists(t, dir)
}

func TestGeneration_TimeoutRefunds(t *testing.T) {
	h := newHarness(t)
	h.grant(1)
	o := h.validated()

	h.composer.EXPECT().NewScratch(o.ID).DoAndReturn(func(id string) (*composer.Scratch, error) {
		return composer.NewScratch(t.TempDir(), id)
	})
	h.flags.disabled[featureflags.BackgroundGeneration] = true
	h.voice.EXPECT().Synthesize(gomock.Any(), gomock.Any()).Return([]byte("audio"), nil)
	h.storage.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), "audio/mpeg").Return(&minio.Uploaded{Path: "voice"}, nil)
	h.storage.EXPECT().SignedURL(gomock.Any(), gomock.Any(), time.Hour).Return("https://signed", nil).Times(2)
	h.animator.EXPECT().Submit(gomock.Any(), gomock.Any(), gomock.Any()).Return(&did.Talk{ID: "tlk_1", Status: did.StatusCreated}, nil)
	h.animator.EXPECT().Poll(gomock.Any(), gomock.Any()).Return(nil, &errutil.TimeoutError{Code: did.TimeoutCode, Attempts: 60})
	h.notifier.EXPECT().Failed(gomock.Any(), gomock.Any()).Do(func(_ context.Context, f notify.Failure) {
		require.True(t, f.Refunded)
		require.Contains(t, f.Message, did.TimeoutCode)
	})

	h.runGeneration(o.ID)

	got := h.get(o.ID)
	require.Equal(t, order.StatusFailed, got.Status)
	require.Equal(t, order.StageFailed, got.Stages().Animation.State)
	require.Equal(t, int64(1), h.credits())
}

func TestGeneration_ConfigMissingRefundsWithoutCalls(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(h *harness)
		code    string
		message string
	}{
		{
			name:    "replicate token",
			mutate:  func(h *harness) { h.cfg.Replicate.APIToken = "" },
			code:    CodeConfigMissing,
			message: "Replicate configuration missing. Please set API token and model version.",
		},
		{
			name:    "d-id key",
			mutate:  func(h *harness) { h.cfg.DID.APIKey = "" },
			code:    CodeAnimationConfig,
			message: "D-ID API key missing. Configure DID_API_KEY to enable animation.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			h.grant(1)
			o := h.validated()
			tc.mutate(h)

			// Strict mocks: any provider, storage or notifier call fails the test.
			h.runGeneration(o.ID)

			got := h.get(o.ID)
			require.Equal(t, order.StatusFailed, got.Status)
			require.Equal(t, tc.code, got.ErrorCode)
			require.Equal(t, tc.message, got.ErrorMessage)
			require.True(t, got.Refunded)
			require.Equal(t, int64(1), h.credits())
		})
	}
}

func TestGeneration_RedundantNotificationsAreIgnored(t *testing.T) {
	h := newHarness(t)
	h.grant(1)
	o := h.validated()

	cases := []task.OrderPayload{
		{OrderID: o.ID, BeforeStatus: string(order.StatusQueuedGeneration), AfterStatus: string(order.StatusQueuedGeneration)},
		{OrderID: o.ID, BeforeStatus: string(order.StatusQueuedValidation), AfterStatus: string(order.StatusGeneratingBackground)},
		{OrderID: o.ID, BeforeStatus: string(order.StatusPending), AfterStatus: ""},
	}
	for _, p := range cases {
		payload, err := json.Marshal(p)
		require.NoError(t, err)
		require.NoError(t, h.engine.HandleQueuedGeneration(h.ctx, asynq.NewTask(taskname.OrderQueuedGeneration, payload)))
	}

	require.Equal(t, order.StatusQueuedGeneration, h.get(o.ID).Status)
}

func TestGeneration_StaleOrderIsIgnored(t *testing.T) {
	h := newHarness(t)
	h.grant(1)
	o := h.createDefault()

	// The order never reached queued_generation.
	tk, _, err := task.NewOrderQueuedGenerationTask(o.ID, string(order.StatusQueuedValidation), string(order.StatusQueuedGeneration))
	require.NoError(t, err)
	require.NoError(t, h.engine.HandleQueuedGeneration(h.ctx, tk))

	require.Equal(t, order.StatusPending, h.get(o.ID).Status)
	require.Equal(t, int64(1), h.credits())
}

func TestGeneration_LockHeldIsRetried(t *testing.T) {
	h := newHarness(t)
	h.grant(1)
	o := h.validated()

	lease, err := h.locker.Acquire(h.ctx, o.ID, time.Minute)
	require.NoError(t, err)
	defer func() { _ = lease.Release(h.ctx) }()

	err = h.engine.HandleQueuedGeneration(h.ctx, h.enqueuer.last(t, taskname.OrderQueuedGeneration, o.ID))
	require.ErrorIs(t, err, lock.ErrNotAcquired)

	require.Equal(t, order.StatusQueuedGeneration, h.get(o.ID).Status)
	_, err = h.locker.Acquire(h.ctx, o.ID, time.Minute)
	require.ErrorIs(t, err, lock.ErrNotAcquired)
}

func TestOrderCreated_GenerationRunsWhenDeliveredImmediately(t *testing.T) {
	h := newHarness(t)
	h.grant(1)
	o := h.createDefault()

	h.storage.EXPECT().Exists(gomock.Any(), testSource).Return(true, nil)
	h.background.EXPECT().Submit(gomock.Any(), BuildPrompt(o)).Return(prediction(replicate.StatusStarting), nil)
	h.background.EXPECT().Poll(gomock.Any(), gomock.Any()).Return(prediction(replicate.StatusSucceeded, backgroundVideo), nil)
	h.expectMedia(o, backgroundVideo)
	h.notifier.EXPECT().Completed(gomock.Any(), gomock.Any())

	var (
		delivered     bool
		generationErr error
	)
	h.enqueuer.deliver = func(tk *asynq.Task) {
		if tk.Type() != taskname.OrderQueuedGeneration {
			return
		}
		delivered = true
		generationErr = h.engine.HandleQueuedGeneration(h.ctx, tk)
	}

	h.runCreated(o.ID)

	require.True(t, delivered)
	require.NoError(t, generationErr)
	require.Equal(t, order.StatusComplete, h.get(o.ID).Status)
}

func TestRecover_StalledOrderRefunds(t *testing.T) {
	h := newHarness(t)
	h.grant(1)
	o := h.validated()

	_, err := h.orders.Transition(h.ctx, o.ID, []order.Status{order.StatusQueuedGeneration}, order.StatusProcessing, nil)
	require.NoError(t, err)

	h.notifier.EXPECT().Failed(gomock.Any(), notify.Failure{
		Email:    testEmail,
		OrderID:  o.ID,
		Message:  "Order processing stopped before completion.",
		Refunded: true,
	})

	require.NoError(t, h.engine.Recover(h.ctx, o.ID, order.StatusProcessing))

	got := h.get(o.ID)
	require.Equal(t, order.StatusFailed, got.Status)
	require.Equal(t, CodeStalled, got.ErrorCode)
	require.True(t, got.Refunded)
	require.Equal(t, int64(1), h.credits())
	require.Equal(t, 1, h.entries(credit.EntryCredit))
}

func TestRecover_EarlierRefundIsNotRepeated(t *testing.T) {
	h := newHarness(t)
	h.grant(1)
	o := h.validated()

	_, err := h.orders.Transition(h.ctx, o.ID, []order.Status{order.StatusQueuedGeneration}, order.StatusProcessing, nil)
	require.NoError(t, err)
	// A failing run refunded but could not record the failed status.
	require.True(t, h.ledger.Credit(h.ctx, testUser, o.ID))

	h.notifier.EXPECT().Failed(gomock.Any(), gomock.Any())

	require.NoError(t, h.engine.Recover(h.ctx, o.ID, order.StatusProcessing))

	require.Equal(t, order.StatusFailed, h.get(o.ID).Status)
	require.Equal(t, int64(1), h.credits())
	require.Equal(t, 1, h.entries(credit.EntryCredit))
}

func TestRecover_LockedOrderIsLeftAlone(t *testing.T) {
	h := newHarness(t)
	h.grant(1)
	o := h.validated()

	_, err := h.orders.Transition(h.ctx, o.ID, []order.Status{order.StatusQueuedGeneration}, order.StatusProcessing, nil)
	require.NoError(t, err)

	lease, err := h.locker.Acquire(h.ctx, o.ID, time.Minute)
	require.NoError(t, err)
	defer func() { _ = lease.Release(h.ctx) }()

	require.NoError(t, h.engine.Recover(h.ctx, o.ID, order.StatusProcessing))

	require.Equal(t, order.StatusProcessing, h.get(o.ID).Status)
	require.Zero(t, h.credits())
}
