// Package client is the shared HTTP transport for third-party provider APIs.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"luxlife-studio/pkg/errutil"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

type HTTPClient struct {
	provider string
	http     *http.Client
	limiter  *rate.Limiter
}

// NewHTTP returns a client for provider limited to rps requests per second.
func NewHTTP(provider string, timeout time.Duration, rps float64) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))
	}

	return &HTTPClient{
		provider: provider,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter: limiter,
	}
}

type Request struct {
	Method    string
	URL       string
	Operation string
	Body      any
	Header    http.Header
}

// DoJSON sends r and decodes a 2xx JSON response into out. Non-2xx responses
// become *errutil.ProviderError carrying the status and body.
func (c *HTTPClient) DoJSON(ctx context.Context, r Request, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var body io.Reader
	if r.Body != nil {
		b, err := json.Marshal(r.Body)
		if err != nil {
			return fmt.Errorf("%s: encode %s request: %w", c.provider, r.Operation, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, body)
	if err != nil {
		return fmt.Errorf("%s: build %s request: %w", c.provider, r.Operation, err)
	}
	for k, v := range r.Header {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %s request failed: %w", c.provider, r.Operation, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("%s: read %s response: %w", c.provider, r.Operation, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &errutil.ProviderError{
			Provider:   c.provider,
			Operation:  r.Operation,
			StatusCode: resp.StatusCode,
			Body:       string(raw),
		}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode %s response: %w", c.provider, r.Operation, err)
	}
	return nil
}

// Download streams url into w.
func (c *HTTPClient) Download(ctx context.Context, url string, w io.Writer) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: download failed: %w", c.provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &errutil.ProviderError{Provider: c.provider, Operation: "download", StatusCode: resp.StatusCode, Body: string(b)}
	}

	_, err = io.Copy(w, resp.Body)
	return err
}
