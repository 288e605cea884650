package workflow

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"luxlife-studio/pkg/errutil"
	"luxlife-studio/pkg/replicate"
	"luxlife-studio/services/order"
)

func TestClassifyBackgroundError(t *testing.T) {
	payment := &errutil.ProviderError{Provider: "replicate", Operation: "create_prediction", StatusCode: http.StatusPaymentRequired, Body: "{}"}

	fb := classifyBackgroundError(fmt.Errorf("submit: %w", payment))
	require.Equal(t, order.ReasonReplicateInsufficientCredits, fb.ReasonCode)
	require.Equal(t, order.StrategyAnimationOnly, fb.Strategy)
	require.True(t, fb.Used)

	// A message that merely mentions 402 is not a payment failure.
	fb = classifyBackgroundError(errors.New("upstream said 402"))
	require.Equal(t, order.ReasonReplicateGenerationFailed, fb.ReasonCode)
	require.Equal(t, "upstream said 402", fb.Details)

	fb = classifyBackgroundError(&errutil.TimeoutError{Code: "replicate_timeout", Attempts: 30})
	require.Equal(t, order.ReasonReplicateGenerationFailed, fb.ReasonCode)
}

func TestEvaluatePrediction(t *testing.T) {
	cases := []struct {
		name       string
		prediction *replicate.Prediction
		url        string
		reasonCode string
		details    string
	}{
		{
			name:       "video",
			prediction: &replicate.Prediction{Status: replicate.StatusSucceeded, Output: []string{"https://cdn/bg.MP4?sig=1"}},
			url:        "https://cdn/bg.MP4?sig=1",
		},
		{
			name:       "image",
			prediction: &replicate.Prediction{Status: replicate.StatusSucceeded, Output: []string{"https://cdn/bg.png"}},
			reasonCode: order.ReasonReplicateReturnedImage,
			details:    "https://cdn/bg.png",
		},
		{
			name:       "succeeded without output",
			prediction: &replicate.Prediction{Status: replicate.StatusSucceeded},
			reasonCode: order.ReasonReplicateGenerationFailed,
			details:    "Replicate did not return a successful result.",
		},
		{
			name:       "canceled",
			prediction: &replicate.Prediction{Status: replicate.StatusCanceled, Error: "canceled by user"},
			reasonCode: order.ReasonReplicateGenerationFailed,
			details:    "canceled by user",
		},
		{
			name:       "still processing",
			prediction: &replicate.Prediction{Status: replicate.StatusProcessing},
			reasonCode: order.ReasonReplicateGenerationFailed,
			details:    "Replicate did not return a successful result.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			url, fb := evaluatePrediction(tc.prediction)
			require.Equal(t, tc.url, url)
			require.Equal(t, tc.reasonCode, fb.ReasonCode)
			require.Equal(t, tc.reasonCode != "", fb.Used)
			require.Equal(t, tc.details, fb.Details)
		})
	}
}
