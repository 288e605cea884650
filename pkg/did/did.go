// Package did drives the D-ID talks API: it animates a portrait with an
// audio track and polls the talk until the rendered video is available.
package did

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"luxlife-studio/pkg/client"
	"luxlife-studio/pkg/config"
	"luxlife-studio/pkg/poll"

	"go.uber.org/zap"
)

const (
	StatusCreated = "created"
	StatusStarted = "started"
	StatusDone    = "done"
	StatusError   = "error"

	TimeoutCode = "did_timeout"

	maxPollAttempts = 60
	retryDelay      = 2 * time.Second
	pendingDelay    = 3 * time.Second
)

var ErrGenerationFailed = errors.New("did_generation_failed")

type Talk struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	ResultURL string `json:"result_url,omitempty"`
	Error     any    `json:"error,omitempty"`
}

func (t *Talk) Terminal() bool {
	return t != nil && (t.Status == StatusDone || t.Status == StatusError)
}

// Result returns the rendered video URL of a finished talk, or the failure
// reported by D-ID.
func (t *Talk) Result() (string, error) {
	if t != nil && t.Status == StatusDone && t.ResultURL != "" {
		return t.ResultURL, nil
	}
	if msg := t.errorMessage(); msg != "" {
		return "", errors.New(msg)
	}
	return "", ErrGenerationFailed
}

func (t *Talk) errorMessage() string {
	if t == nil || t.Error == nil {
		return ""
	}
	switch v := t.Error.(type) {
	case string:
		return v
	case map[string]any:
		if d, ok := v["description"].(string); ok && d != "" {
			return d
		}
		if k, ok := v["kind"].(string); ok {
			return k
		}
	}
	return fmt.Sprint(t.Error)
}

type script struct {
	Type     string `json:"type"`
	AudioURL string `json:"audio_url"`
}

type talkConfig struct {
	ResultFormat string `json:"result_format"`
}

type createRequest struct {
	Script    script     `json:"script"`
	SourceURL string     `json:"source_url"`
	Config    talkConfig `json:"config"`
}

type Client struct {
	http    *client.HTTPClient
	baseURL string
	apiKey  string

	sleep func(ctx context.Context, d time.Duration) error
}

func New(cfg *config.Config) *Client {
	return &Client{
		http:    client.NewHTTP("did", cfg.Provider.Timeout, cfg.Provider.RateLimit),
		baseURL: strings.TrimRight(cfg.DID.BaseURL, "/"),
		apiKey:  cfg.DID.APIKey,
		sleep:   poll.Sleep,
	}
}

func (c *Client) header() http.Header {
	h := http.Header{}
	h.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(c.apiKey+":")))
	return h
}

// Submit creates a talk animating imageURL with the audio at audioURL.
func (c *Client) Submit(ctx context.Context, imageURL, audioURL string) (*Talk, error) {
	var talk Talk
	err := c.http.DoJSON(ctx, client.Request{
		Method:    http.MethodPost,
		URL:       c.baseURL + "/talks",
		Operation: "create",
		Header:    c.header(),
		Body: createRequest{
			Script:    script{Type: "audio", AudioURL: audioURL},
			SourceURL: imageURL,
			Config:    talkConfig{ResultFormat: "mp4"},
		},
	}, &talk)
	if err != nil {
		return nil, fmt.Errorf("did_create_failed: %w", err)
	}
	return &talk, nil
}

// Poll fetches the talk until it is done or errored. Running out of attempts
// is a TimeoutError.
func (c *Client) Poll(ctx context.Context, talk *Talk) (*Talk, error) {
	if talk == nil || talk.ID == "" {
		return talk, ErrGenerationFailed
	}
	log := zap.L().With(zap.String("talk_id", talk.ID))

	return poll.Until(ctx, talk, func(ctx context.Context) (*Talk, error) {
		var current Talk
		err := c.http.DoJSON(ctx, client.Request{
			Method:    http.MethodGet,
			URL:       c.baseURL + "/talks/" + talk.ID,
			Operation: "get",
			Header:    c.header(),
		}, &current)
		if err != nil {
			return nil, err
		}
		return &current, nil
	}, poll.Config[*Talk]{
		MaxAttempts: maxPollAttempts,
		Delay:       delay,
		Done:        (*Talk).Terminal,
		Exhaustion:  poll.Fail,
		TimeoutCode: TimeoutCode,
		OnError: func(attempt int, err error) {
			log.Warn("did poll failed", zap.Int("attempt", attempt), zap.Error(err))
		},
		Sleep: c.sleep,
	})
}

func delay(attempt int, lastErr error) time.Duration {
	switch {
	case attempt == 0:
		return 0
	case lastErr != nil:
		return retryDelay
	default:
		return pendingDelay
	}
}
