// Package oneinch wraps the 1inch developer portal REST APIs as MCP services.
package oneinch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/devansh-m12/doraemon-sub001/internal/common"
)

// maxResponseSize caps a response body.
const maxResponseSize = 10 << 20

// ErrResponseTooLarge is returned when a response body exceeds the size cap.
var ErrResponseTooLarge = errors.New("response too large")

// DefaultBaseURL is the public 1inch API gateway.
const DefaultBaseURL = "https://api.1inch.dev"

// DefaultTimeout applies when ClientConfig.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// ClientConfig is shared by every 1inch service.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// APIError is a non-2xx response from the 1inch API.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client performs authenticated requests against the 1inch API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	maxBody    int64
}

// NewClient creates a client from cfg.
func NewClient(cfg ClientConfig, logger *common.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		maxBody:    maxResponseSize,
	}
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get performs a GET request and returns the raw JSON body.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with a JSON body and returns the raw JSON body.
func (c *Client) Post(ctx context.Context, path string, data any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, path, data)
}

// GetJSON performs a GET request and decodes the body into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.Get(ctx, path, query)
	if err != nil {
		return err
	}
	return decode(body, out)
}

// PostJSON performs a POST request and decodes the body into out.
func (c *Client) PostJSON(ctx context.Context, path string, data, out any) error {
	body, err := c.Post(ctx, path, data)
	if err != nil {
		return err
	}
	return decode(body, out)
}

func decode(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, data any) (json.RawMessage, error) {
	c.logger.Debug().Str("method", method).Str("path", path).Msg("1inch request")

	var bodyReader io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.logger.Error().Str("method", method).Str("path", path).Int64("duration_ms", duration.Milliseconds()).Str("error", err.Error()).Msg("1inch request failed")
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > c.maxBody {
		c.logger.Error().Str("method", method).Str("path", path).Int64("limit_bytes", c.maxBody).Msg("1inch response too large")
		return nil, fmt.Errorf("%w: %s %s exceeded %d bytes", ErrResponseTooLarge, method, path, c.maxBody)
	}

	c.logger.Debug().Int("status", resp.StatusCode).Int64("duration_ms", duration.Milliseconds()).Msg("1inch response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseErrorResponse(resp.StatusCode, body)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return json.RawMessage("null"), nil
	}
	return body, nil
}

// parseErrorResponse extracts a meaningful message from a 1inch error body.
func parseErrorResponse(statusCode int, body []byte) error {
	var errResp struct {
		Error       string `json:"error"`
		Description string `json:"description"`
		Message     string `json:"message"`
	}
	msg := fmt.Sprintf("API request failed with status %d", statusCode)
	if json.Unmarshal(body, &errResp) == nil {
		switch {
		case errResp.Description != "":
			msg = errResp.Description
		case errResp.Error != "":
			msg = errResp.Error
		case errResp.Message != "":
			msg = errResp.Message
		}
	}
	return &APIError{StatusCode: statusCode, Message: msg, Body: string(body)}
}

// chainPath renders "/<prefix>/<chainID><suffix>".
func chainPath(prefix string, chainID int, suffix string) string {
	return fmt.Sprintf("%s/%d%s", prefix, chainID, suffix)
}
