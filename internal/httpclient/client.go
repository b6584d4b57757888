// Package httpclient implements the request/response exchange against the
// evaluation service.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/stressray/stressray/internal/scenario"
)

// EvaluatePath is the fixed path trials are issued against.
const EvaluatePath = "/evaluate"

// Client wraps an http.Client configured for the target endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    map[string]string
}

// ClientOption is a function that configures a Client
type ClientOption func(*Client)

// NewClient creates a new client with the given options.
func NewClient(options ...ClientOption) *Client {
	client := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		headers: make(map[string]string),
	}

	for _, option := range options {
		option(client)
	}

	return client
}

// WithBaseURL sets the target endpoint base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithTimeout sets the per-request timeout ceiling.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// Response is the observable result of one exchange.
type Response struct {
	// StatusCode is the HTTP status returned by the service.
	StatusCode int

	// BytesReceived is the response body length.
	BytesReceived int64

	// ErrorDetail is a service-provided failure description pulled from a
	// JSON error body, empty when the body carries none.
	ErrorDetail string
}

// Evaluate sends one scenario to the evaluation path and returns the
// response. Non-success status codes are not errors here; an error is
// returned only when no response was received at all.
func (c *Client) Evaluate(ctx context.Context, sc scenario.Scenario) (*Response, error) {
	body, err := json.Marshal(sc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode scenario: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+EvaluatePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	resp := &Response{
		StatusCode:    httpResp.StatusCode,
		BytesReceived: int64(len(respBody)),
	}

	if !IsSuccessStatus(httpResp.StatusCode) {
		resp.ErrorDetail = extractErrorDetail(respBody)
	}

	return resp, nil
}

// IsSuccessStatus reports whether a status code indicates acceptance.
func IsSuccessStatus(code int) bool {
	return code >= 200 && code < 300
}

// extractErrorDetail pulls a failure description out of a JSON error body.
func extractErrorDetail(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}

	for _, path := range []string{"error", "detail", "message"} {
		if result := gjson.GetBytes(body, path); result.Exists() && result.Type == gjson.String {
			return result.String()
		}
	}

	return ""
}

// IsTimeout reports whether an exchange failed because the per-trial
// timeout ceiling was reached.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
