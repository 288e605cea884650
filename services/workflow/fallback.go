package workflow

import (
	"errors"
	"net/http"

	"luxlife-studio/pkg/errutil"
	"luxlife-studio/pkg/replicate"
	"luxlife-studio/services/order"
)

// classifyBackgroundError maps a failed background generation to the
// fallback recorded on the order.
func classifyBackgroundError(err error) order.Fallback {
	var perr *errutil.ProviderError
	if errors.As(err, &perr) && perr.StatusCode == http.StatusPaymentRequired {
		return order.Fallback{
			Used:       true,
			ReasonCode: order.ReasonReplicateInsufficientCredits,
			Reason:     "Background generator credits are currently exhausted.",
			Details:    err.Error(),
			Strategy:   order.StrategyAnimationOnly,
		}
	}
	return generationFailed(err.Error())
}

func generationFailed(details string) order.Fallback {
	return order.Fallback{
		Used:       true,
		ReasonCode: order.ReasonReplicateGenerationFailed,
		Reason:     "Background generator unavailable; delivered animation-only.",
		Details:    details,
		Strategy:   order.StrategyAnimationOnly,
	}
}

func returnedImage(output string) order.Fallback {
	if output == "" {
		output = "Non-video output."
	}
	return order.Fallback{
		Used:       true,
		ReasonCode: order.ReasonReplicateReturnedImage,
		Reason:     "Background generator returned a still image.",
		Details:    output,
		Strategy:   order.StrategyAnimationOnly,
	}
}

func backgroundDisabled() order.Fallback {
	return order.Fallback{
		Used:       true,
		ReasonCode: order.ReasonBackgroundDisabled,
		Reason:     "Background generation is temporarily disabled.",
		Strategy:   order.StrategyAnimationOnly,
	}
}

// evaluatePrediction decides between a background video and a fallback for
// a polled prediction.
func evaluatePrediction(p *replicate.Prediction) (string, order.Fallback) {
	if p == nil {
		return "", generationFailed("Replicate did not return a prediction.")
	}
	if p.Status != replicate.StatusSucceeded || len(p.Output) == 0 {
		details := p.Error
		if details == "" {
			details = "Replicate did not return a successful result."
		}
		return "", generationFailed(details)
	}
	if url, ok := p.VideoOutput(); ok {
		return url, order.Fallback{}
	}
	return "", returnedImage(p.Output[0])
}

func replicateRecord(p *replicate.Prediction, modelVersion string) order.Replicate {
	if p == nil {
		return order.Replicate{ModelVersion: modelVersion}
	}
	return order.Replicate{
		PredictionID: p.ID,
		ModelVersion: modelVersion,
		Status:       p.Status,
		Output:       p.Output,
		Error:        p.Error,
		GetURL:       p.URLs.Get,
		CancelURL:    p.URLs.Cancel,
	}
}
