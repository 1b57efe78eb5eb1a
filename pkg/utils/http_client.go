// Package utils provides the HTTP and email clients the action executors
// delegate their outbound side effects to.
package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// HTTPClient is a reusable client for webhook calls
type HTTPClient struct {
	client *http.Client
}

// HTTPRequest describes one outbound HTTP call
type HTTPRequest struct {
	URL         string            `json:"url"`
	Method      string            `json:"method"`
	Headers     map[string]string `json:"headers,omitempty"`
	QueryParams map[string]string `json:"query_params,omitempty"`
	Body        interface{}       `json:"body,omitempty"`
}

// HTTPResponse captures the outcome of an HTTP call. Body holds the decoded
// JSON payload when the response is JSON, otherwise the raw text.
type HTTPResponse struct {
	StatusCode int         `json:"status_code"`
	Body       interface{} `json:"body"`
	RawBody    []byte      `json:"raw_body,omitempty"`
}

// NewHTTPClient creates an HTTP client with a default timeout. Per-call
// deadlines come from the request context; the client timeout is only a
// backstop.
func NewHTTPClient() *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetTimeout overrides the backstop timeout
func (c *HTTPClient) SetTimeout(timeout time.Duration) {
	c.client.Timeout = timeout
}

// Do executes the request and reads the full response
func (c *HTTPClient) Do(ctx context.Context, req *HTTPRequest) (*HTTPResponse, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var bodyReader io.Reader
	switch body := req.Body.(type) {
	case nil:
	case string:
		bodyReader = bytes.NewBufferString(body)
	case []byte:
		bodyReader = bytes.NewBuffer(body)
	default:
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if len(req.QueryParams) > 0 {
		query := url.Values{}
		for key, value := range req.QueryParams {
			query.Set(key, value)
		}
		httpReq.URL.RawQuery = query.Encode()
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	if httpReq.Header.Get("Content-Type") == "" && bodyReader != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	response := &HTTPResponse{
		StatusCode: resp.StatusCode,
		RawBody:    rawBody,
	}

	var decoded interface{}
	if json.Unmarshal(rawBody, &decoded) == nil {
		response.Body = decoded
	} else {
		response.Body = string(rawBody)
	}
	return response, nil
}
