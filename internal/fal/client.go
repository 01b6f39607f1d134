package fal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/samber/lo"
)

// Invoker is the minimal surface of the hosted generation API. Two call
// modes exist: Run blocks on the synchronous endpoint, Subscribe goes
// through the request queue and waits for completion (no log streaming).
type Invoker interface {
	Run(ctx context.Context, endpoint string, args map[string]any) (map[string]any, error)
	Subscribe(ctx context.Context, endpoint string, args map[string]any) (map[string]any, error)
}

const (
	defaultRunBase      = "https://fal.run"
	defaultQueueBase    = "https://queue.fal.run"
	defaultPollInterval = 500 * time.Millisecond
)

// Client talks to the hosted API over plain HTTP. The zero timeout on the
// generation call is deliberate: a CLI run waits as long as the queue does,
// unless the caller bounds ctx.
type Client struct {
	Client       *http.Client
	Key          string
	RunBase      string        // overrides defaultRunBase, for tests
	QueueBase    string        // overrides defaultQueueBase, for tests
	PollInterval time.Duration // queue poll cadence, default 500ms
}

func (c *Client) Run(ctx context.Context, endpoint string, args map[string]any) (map[string]any, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("endpoint", endpoint)
	log.Info("invoking model synchronously")

	base := lo.Ternary(c.RunBase != "", c.RunBase, defaultRunBase)
	return c.postJSON(ctx, base+"/"+endpoint, args)
}

func (c *Client) Subscribe(ctx context.Context, endpoint string, args map[string]any) (map[string]any, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("endpoint", endpoint)
	log.Info("submitting to request queue")

	base := lo.Ternary(c.QueueBase != "", c.QueueBase, defaultQueueBase)
	submitted, err := c.postJSON(ctx, base+"/"+endpoint, args)
	if err != nil {
		return nil, err
	}

	statusURL, _ := submitted["status_url"].(string)
	responseURL, _ := submitted["response_url"].(string)
	if statusURL == "" || responseURL == "" {
		return nil, fmt.Errorf("queue submit response missing status_url/response_url")
	}

	interval := lo.Ternary(c.PollInterval > 0, c.PollInterval, defaultPollInterval)
	for {
		status, err := c.getJSON(ctx, statusURL)
		if err != nil {
			return nil, err
		}
		switch s, _ := status["status"].(string); s {
		case "COMPLETED":
			log.Info("request completed")
			return c.getJSON(ctx, responseURL)
		case "IN_QUEUE", "IN_PROGRESS":
		default:
			return nil, fmt.Errorf("unexpected queue status %q", s)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
}

func (c *Client) postJSON(ctx context.Context, url string, args map[string]any) (map[string]any, error) {
	body, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) getJSON(ctx context.Context, url string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (map[string]any, error) {
	req.Header.Set("Authorization", "Key "+c.Key)

	client := lo.Ternary(c.Client != nil, c.Client, http.DefaultClient)
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%s %s: %s: %s", req.Method, req.URL, resp.Status, strings.TrimSpace(string(excerpt)))
	}

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding response from %s: %w", req.URL, err)
	}
	return out, nil
}
