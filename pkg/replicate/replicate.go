// Package replicate submits background generation jobs to the Replicate
// predictions API and polls them to a terminal status.
package replicate

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"luxlife-studio/pkg/client"
	"luxlife-studio/pkg/config"
	"luxlife-studio/pkg/poll"

	"go.uber.org/zap"
)

const (
	StatusStarting   = "starting"
	StatusProcessing = "processing"
	StatusSucceeded  = "succeeded"
	StatusFailed     = "failed"
	StatusCanceled   = "canceled"

	NegativePrompt = "blurry, distorted, low quality, text, watermark, signature"

	maxPollAttempts = 30
)

var (
	ErrMissingGetURL = errors.New("replicate_missing_get_url")

	videoExt = regexp.MustCompile(`(?i)\.(mp4|mov|webm|mkv)$`)
)

type Prediction struct {
	ID     string   `json:"id"`
	Status string   `json:"status"`
	Error  string   `json:"error,omitempty"`
	Output []string `json:"output,omitempty"`
	URLs   struct {
		Get    string `json:"get"`
		Cancel string `json:"cancel"`
	} `json:"urls"`
}

func (p *Prediction) Terminal() bool {
	if p == nil {
		return false
	}
	switch p.Status {
	case StatusSucceeded, StatusFailed, StatusCanceled:
		return true
	}
	return false
}

// VideoOutput returns the first output when it references a video file.
func (p *Prediction) VideoOutput() (string, bool) {
	if p == nil || len(p.Output) == 0 {
		return "", false
	}
	first := p.Output[0]
	if u, _, ok := strings.Cut(first, "?"); ok {
		first = u
	}
	if !videoExt.MatchString(first) {
		return "", false
	}
	return p.Output[0], true
}

type Input struct {
	Prompt            string  `json:"prompt"`
	NegativePrompt    string  `json:"negative_prompt"`
	Width             int     `json:"width"`
	Height            int     `json:"height"`
	NumOutputs        int     `json:"num_outputs"`
	NumInferenceSteps int     `json:"num_inference_steps"`
	Scheduler         string  `json:"scheduler"`
	GuidanceScale     float64 `json:"guidance_scale"`
}

type createRequest struct {
	Version string `json:"version"`
	Input   Input  `json:"input"`
}

// Prediction.Output may be a string or a list depending on the model.
type rawPrediction struct {
	Prediction
	RawOutput any `json:"output,omitempty"`
}

type Client struct {
	http         *client.HTTPClient
	baseURL      string
	token        string
	modelVersion string

	sleep func(ctx context.Context, d time.Duration) error
}

func New(cfg *config.Config) *Client {
	return &Client{
		http:         client.NewHTTP("replicate", cfg.Provider.Timeout, cfg.Provider.RateLimit),
		baseURL:      strings.TrimRight(cfg.Replicate.BaseURL, "/"),
		token:        cfg.Replicate.APIToken,
		modelVersion: cfg.Replicate.ModelVersion,
		sleep:        poll.Sleep,
	}
}

func (c *Client) ModelVersion() string { return c.modelVersion }

func (c *Client) header() http.Header {
	h := http.Header{}
	h.Set("Authorization", "Token "+c.token)
	return h
}

// Submit creates a prediction for prompt with the fixed generation settings.
func (c *Client) Submit(ctx context.Context, prompt string) (*Prediction, error) {
	var raw rawPrediction
	err := c.http.DoJSON(ctx, client.Request{
		Method:    http.MethodPost,
		URL:       c.baseURL + "/v1/predictions",
		Operation: "create",
		Header:    c.header(),
		Body: createRequest{
			Version: c.modelVersion,
			Input: Input{
				Prompt:            prompt,
				NegativePrompt:    NegativePrompt,
				Width:             1024,
				Height:            576,
				NumOutputs:        1,
				NumInferenceSteps: 30,
				Scheduler:         "K_EULER",
				GuidanceScale:     7.5,
			},
		},
	}, &raw)
	if err != nil {
		return nil, err
	}

	p := raw.normalize()
	if p.URLs.Get == "" {
		return p, ErrMissingGetURL
	}
	return p, nil
}

// Poll fetches p until it is terminal. Fetch errors are logged and retried;
// when attempts run out the last seen prediction is returned without error.
func (c *Client) Poll(ctx context.Context, p *Prediction) (*Prediction, error) {
	if p == nil || p.URLs.Get == "" {
		return p, ErrMissingGetURL
	}
	log := zap.L().With(zap.String("prediction_id", p.ID))

	return poll.Until(ctx, p, func(ctx context.Context) (*Prediction, error) {
		return c.fetch(ctx, p.URLs.Get)
	}, poll.Config[*Prediction]{
		MaxAttempts: maxPollAttempts,
		Delay:       poll.Linear(time.Second, time.Second, 5*time.Second),
		Done:        (*Prediction).Terminal,
		Exhaustion:  poll.ReturnLast,
		OnError: func(attempt int, err error) {
			log.Warn("replicate poll failed", zap.Int("attempt", attempt), zap.Error(err))
		},
		Sleep: c.sleep,
	})
}

func (c *Client) fetch(ctx context.Context, url string) (*Prediction, error) {
	var raw rawPrediction
	if err := c.http.DoJSON(ctx, client.Request{
		Method:    http.MethodGet,
		URL:       url,
		Operation: "get",
		Header:    c.header(),
	}, &raw); err != nil {
		return nil, err
	}
	return raw.normalize(), nil
}

func (r *rawPrediction) normalize() *Prediction {
	p := r.Prediction
	p.Output = nil
	switch v := r.RawOutput.(type) {
	case string:
		p.Output = []string{v}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				p.Output = append(p.Output, s)
			}
		}
	}
	return &p
}
