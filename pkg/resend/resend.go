// Package resend delivers transactional email through the Resend API.
package resend

import (
	"context"
	"net/http"
	"strings"

	"luxlife-studio/pkg/client"
	"luxlife-studio/pkg/config"

	"go.uber.org/zap"
)

type Email struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
	HTML    string   `json:"html"`
}

type sendResponse struct {
	ID string `json:"id"`
}

type Client struct {
	http    *client.HTTPClient
	baseURL string
	apiKey  string
	from    string
}

func New(cfg *config.Config) *Client {
	return &Client{
		http:    client.NewHTTP("resend", cfg.Provider.Timeout, cfg.Provider.RateLimit),
		baseURL: strings.TrimRight(cfg.Resend.BaseURL, "/"),
		apiKey:  cfg.Resend.APIKey,
		from:    cfg.Resend.FromEmail,
	}
}

// Send posts e. A missing API key or recipient skips delivery.
func (c *Client) Send(ctx context.Context, e Email) error {
	if c.apiKey == "" {
		zap.L().Warn("resend api key missing; email skipped", zap.String("to", e.To), zap.String("subject", e.Subject))
		return nil
	}
	if e.To == "" {
		zap.L().Warn("email recipient missing; email skipped", zap.String("subject", e.Subject))
		return nil
	}

	h := http.Header{}
	h.Set("Authorization", "Bearer "+c.apiKey)

	var resp sendResponse
	if err := c.http.DoJSON(ctx, client.Request{
		Method:    http.MethodPost,
		URL:       c.baseURL + "/emails",
		Operation: "send",
		Header:    h,
		Body: sendRequest{
			From:    c.from,
			To:      []string{e.To},
			Subject: e.Subject,
			Text:    e.Text,
			HTML:    e.HTML,
		},
	}, &resp); err != nil {
		return err
	}

	zap.L().Info("email sent", zap.String("email_id", resp.ID), zap.String("subject", e.Subject))
	return nil
}
