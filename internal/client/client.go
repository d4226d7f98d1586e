// Package client talks to the alibi HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/alibi/internal/excuse"
	"github.com/MikeSquared-Agency/alibi/internal/generator"
	"github.com/MikeSquared-Agency/alibi/internal/store"
)

const (
	DefaultBaseURL = "http://localhost:8080"
	retryDelay     = time.Second
	sessionHeader  = "X-Session-ID"
)

// APIError is a non-2xx reply from the server.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s (%d): %s", e.Message, e.StatusCode, e.Details)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.StatusCode)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	sessionID  string
	retryDelay time.Duration
	logger     *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		sessionID:  NewSessionID(),
		retryDelay: retryDelay,
		logger:     logger,
	}
}

// NewSessionID returns an id of the form session_<unix ms>_<9 hex chars>.
func NewSessionID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("session_%d_%s", time.Now().UnixMilli(), hex[:9])
}

func (c *Client) SessionID() string { return c.sessionID }

// SetSessionID reuses a session across runs.
func (c *Client) SetSessionID(id string) {
	if id != "" {
		c.sessionID = id
	}
}

// Generate requests excuses. A transport failure is retried once after a
// fixed delay; an HTTP error reply is returned as *APIError without retry.
func (c *Client) Generate(ctx context.Context, req excuse.Request) (*generator.Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	resp, err := c.post(ctx, "/api/generate", body)
	if err != nil {
		c.logger.Warn("generate request failed, retrying", "error", err, "delay", c.retryDelay)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.retryDelay):
		}
		resp, err = c.post(ctx, "/api/generate", body)
		if err != nil {
			return nil, fmt.Errorf("generate: %w", err)
		}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeAPIError(resp.StatusCode, data)
	}

	var result generator.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &result, nil
}

// Track records an interaction. Failures are logged and otherwise ignored.
func (c *Client) Track(ctx context.Context, in excuse.Interaction) {
	body, err := json.Marshal(in)
	if err != nil {
		c.logger.Debug("track marshal failed", "error", err)
		return
	}
	resp, err := c.post(ctx, "/api/track", body)
	if err != nil {
		c.logger.Debug("track failed", "error", err)
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

func (c *Client) Scenarios(ctx context.Context) ([]excuse.ScenarioDefinition, error) {
	var out []excuse.ScenarioDefinition
	if err := c.getJSON(ctx, "/api/scenarios", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PopularScenarios(ctx context.Context, limit int) ([]store.ScenarioPopularity, error) {
	path := "/api/scenarios/popular"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out []store.ScenarioPopularity
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(sessionHeader, c.sessionID)
	return c.httpClient.Do(req)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp.StatusCode, data)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func decodeAPIError(status int, data []byte) *APIError {
	var body struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return &APIError{StatusCode: status, Message: "Unknown error"}
	}
	if body.Error == "" {
		body.Error = "Failed to generate excuses"
	}
	return &APIError{StatusCode: status, Message: body.Error, Details: body.Details}
}
