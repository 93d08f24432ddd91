// Package googleai is a small REST client for the Generative Language API
// shared by the Gemini embedding and LLM adapters.
package googleai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/faqrag/internal/adapters/driven/httpretry"
	"github.com/custodia-labs/faqrag/internal/core/domain"
)

// Default configuration values.
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultTimeout = 120 * time.Second
)

// Config holds the credentials and endpoint for the Generative Language API.
type Config struct {
	APIKey string

	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string

	Timeout time.Duration
}

// Client calls Generative Language API methods over HTTP.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

// NewClient creates a client authenticated by API key.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key is required", domain.ErrConfiguration)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
	}, nil
}

// ModelPath returns the resource name for a model id.
func ModelPath(model string) string {
	if strings.HasPrefix(model, "models/") {
		return model
	}
	return "models/" + model
}

// Do sends a request to the resource path (for example
// "models/gemini-2.0-flash:generateContent") and returns the response once
// its status is 2xx. Non-2xx responses become *httpretry.StatusError.
// The caller closes the body.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, in any) (*http.Response, error) {
	var body *bytes.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	u := c.baseURL + "/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, u, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, u, http.NoBody)
	}
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	if err := googleapi.CheckResponse(resp); err != nil {
		resp.Body.Close()
		return nil, WrapError(err)
	}
	return resp, nil
}

// Call sends in as JSON and decodes the response into out.
func (c *Client) Call(ctx context.Context, method, path string, in, out any) error {
	resp, err := c.Do(ctx, method, path, nil, in)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// WrapError converts a Google API error into a StatusError so the shared
// retry policy applies.
func WrapError(err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := gerr.Message
		if msg == "" {
			msg = strings.TrimSpace(gerr.Body)
		}
		return &httpretry.StatusError{Provider: "gemini", StatusCode: gerr.Code, Body: msg}
	}
	return err
}
