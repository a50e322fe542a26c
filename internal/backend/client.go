// Package backend is a client for the hosted document database and file
// storage the app runs on. It speaks the platform's REST API and works
// against both the hosted service and the local menubase emulator.
package backend

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

	"github.com/khabzox/fast-food/internal/domain"
)

// Unique asks the server to generate the id of a new document or file.
const Unique = domain.UniqueID

// NewID generates a document or file id client side.
func NewID() string {
	return domain.NewID()
}

// Config holds client configuration.
type Config struct {
	Endpoint   string // API root including the version, e.g. https://cloud.example.com/v1
	ProjectID  string
	APIKey     string
	Timeout    time.Duration // default 30s, ignored when HTTPClient is set
	HTTPClient *http.Client
}

// Client is a REST client for documents and files.
type Client struct {
	endpoint   string
	projectID  string
	apiKey     string
	httpClient *http.Client
}

// New creates a new Client.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if _, err := url.ParseRequestURI(cfg.Endpoint); err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", cfg.Endpoint, err)
	}
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("project id is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		endpoint:   strings.TrimSuffix(cfg.Endpoint, "/"),
		projectID:  cfg.ProjectID,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}, nil
}

// Endpoint returns the API root the client talks to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// path joins escaped segments onto the endpoint.
func (c *Client) path(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return c.endpoint + "/" + strings.Join(escaped, "/")
}

// do sends a request and decodes a JSON response into out. A nil out
// discards the body. Non-2xx responses are returned as *Error.
func (c *Client) do(ctx context.Context, method, rawURL string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("X-Appwrite-Project", c.projectID)
	if c.apiKey != "" {
		req.Header.Set("X-Appwrite-Key", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, respBody)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, rawURL string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, method, rawURL, body, contentType, out)
}

// withQueries appends queries[] parameters to rawURL.
func withQueries(rawURL string, queries []string) string {
	if len(queries) == 0 {
		return rawURL
	}
	v := url.Values{}
	for _, q := range queries {
		v.Add("queries[]", q)
	}
	return rawURL + "?" + v.Encode()
}
