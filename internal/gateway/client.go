// Package gateway is a minimal HTTP client for the remote Tool Gateway
// service. Every failure is reported through the returned Result; the
// client never returns a Go error from Invoke or ListTools.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultTimeout applies to every gateway request unless Config overrides it.
	DefaultTimeout = 30 * time.Second

	maxBodyBytes = 10 << 20
)

// Result is the outcome of one gateway call. Data is meaningful when
// Success is true, Error otherwise.
type Result struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Failure builds an unsuccessful Result.
func Failure(format string, args ...any) Result {
	return Result{Error: fmt.Sprintf(format, args...)}
}

// Config holds the gateway endpoint and credential.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client talks to the Tool Gateway. It holds no per-call state.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a gateway client.
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.Named("gateway"),
	}
}

// Invoke calls POST /tools/{name} with {"arguments": args}.
func (c *Client) Invoke(ctx context.Context, name string, args map[string]any) Result {
	if args == nil {
		args = map[string]any{}
	}
	body, err := json.Marshal(map[string]any{"arguments": args})
	if err != nil {
		return Failure("marshal arguments: %v", err)
	}

	start := time.Now()
	res := c.do(ctx, http.MethodPost, "/tools/"+url.PathEscape(name), body)
	c.logger.Debug("tool invoked",
		zap.String("tool", name),
		zap.Bool("success", res.Success),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res
}

// ListTools calls GET /tools.
func (c *Client) ListTools(ctx context.Context) Result {
	return c.do(ctx, http.MethodGet, "/tools", nil)
}

// Health calls GET /health and returns nil when the gateway answers 200.
func (c *Client) Health(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway health: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway health: HTTP %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) Result {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return Failure("%v", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("gateway request failed", zap.String("path", path), zap.Error(err))
		return Failure("%v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Failure("read response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Failure("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if !json.Valid(data) {
		return Failure("invalid JSON response from %s", path)
	}
	return Result{Success: true, Data: json.RawMessage(data)}
}
