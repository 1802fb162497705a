package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// client carries the pieces shared by every HTTP-backed provider:
// generation defaults, the retry/timeout loop, and error mapping.
// Each provider supplies only its request building and response parsing.
type client struct {
	name     string
	cfg      Config
	ep       EndpointConfig
	http     *http.Client
	observer Observer
}

func newClient(name string, cfg Config, ep EndpointConfig, observer Observer) (client, error) {
	if ep.APIKey == "" {
		return client{}, &Error{Provider: name, Err: ErrMissingAPIKey}
	}
	if observer == nil {
		observer = NoopObserver{}
	}
	return client{
		name: name,
		cfg:  cfg,
		ep:   ep,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: observer,
	}, nil
}

// resolve applies per-request overrides on top of the configured defaults.
func (c *client) resolve(req GenerateRequest) (model string, temp float64, maxTok int) {
	model = c.ep.Model
	if req.Model != "" {
		model = req.Model
	}
	temp = c.cfg.Temperature
	if req.Temperature != nil {
		temp = *req.Temperature
	}
	maxTok = c.cfg.MaxTokens
	if req.MaxTokens != nil {
		maxTok = *req.MaxTokens
	}
	return model, temp, maxTok
}

// generate runs one upstream call (plus configured retries) under the
// configured timeout, reports the outcome to the observer, and maps
// transport failures onto the provider error taxonomy.
func (c *client) generate(ctx context.Context, model string, call func(ctx context.Context) (string, error)) (*GenerateResponse, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutMs)*time.Millisecond)
	defer cancel()

	var lastErr error
	attempts := 1 + c.cfg.MaxRetries

	for i := 0; i < attempts; i++ {
		text, err := call(ctx)
		if err == nil {
			latency := time.Since(start).Milliseconds()
			c.observer.OnCallComplete(CallEvent{
				Provider:  c.name,
				Model:     model,
				LatencyMs: latency,
				Success:   true,
			})
			return &GenerateResponse{
				Text:      text,
				Model:     model,
				LatencyMs: latency,
			}, nil
		}
		lastErr = err

		// Don't retry on context cancellation/timeout.
		if ctx.Err() != nil {
			break
		}
	}

	latency := time.Since(start).Milliseconds()
	mapped := c.mapError(ctx, lastErr)
	c.observer.OnCallComplete(CallEvent{
		Provider:  c.name,
		Model:     model,
		LatencyMs: latency,
		Success:   false,
		ErrorCode: errorCode(mapped),
	})

	return nil, wrapErr(c.name, mapped)
}

func (c *client) mapError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return ctx.Err()
		}
		return ErrTimeout
	}
	if isConnectionError(err) {
		return ErrUnavailable
	}
	return err
}

// postJSON sends a JSON payload and returns the raw response body.
// Any non-2xx status is an error carrying the body for diagnostics.
func (c *client) postJSON(ctx context.Context, url string, headers map[string]string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s returned status %d: %s", c.name, httpResp.StatusCode, string(respBody))
	}

	return respBody, nil
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}
