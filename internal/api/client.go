package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/doidoi-app/doidoi-cli/internal/logging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTimeout is the default HTTP request timeout
const DefaultTimeout = 30 * time.Second

// Client is the API client for the doidoi backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithUserAgent sets the User-Agent header sent with every request
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a new API client.
// Endpoints are resolved relative to baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		userAgent: "doidoi-cli/1.0",
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GetBaseURL returns the API base URL
func (c *Client) GetBaseURL() string {
	return c.baseURL
}

// CreateResponse is the body returned when a device is created
type CreateResponse struct {
	Message   string          `json:"message" yaml:"message"`
	RequestID string          `json:"-" yaml:"-"`
	Raw       json.RawMessage `json:"-" yaml:"-"`
}

// post sends an authenticated JSON POST to a relative endpoint.
// Non-2xx responses come back as *APIError. Anything else that goes wrong
// is logged and returned wrapped.
func (c *Client) post(ctx context.Context, token, endpoint string, body any) (*CreateResponse, error) {
	resp, err := c.doPost(ctx, token, endpoint, body)
	if err != nil && !IsTransportError(err) {
		logging.Error("Unexpected error",
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
	}
	return resp, err
}

func (c *Client) doPost(ctx context.Context, token, endpoint string, body any) (*CreateResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	url := c.baseURL + "/" + endpoint
	requestID := uuid.NewString()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	logging.LogRequest(http.MethodPost, url, requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	logging.LogResponse(url, resp.StatusCode, requestID)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, respBody, requestID)
	}

	result := &CreateResponse{RequestID: requestID, Raw: respBody}
	if len(bytes.TrimSpace(respBody)) == 0 {
		return result, nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return result, nil
}
