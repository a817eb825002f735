// Package client is a typed Go client for the create-contact endpoint served
// by `createcontact serve`.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// APIError is returned when the endpoint responds with a non-2xx status.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("contacts api %d: %s", e.Status, e.Message)
}

// Client calls the contacts endpoint.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithTimeout sets the HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.HTTPClient.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

// New creates a client for baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type createContactRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// CreateContact calls POST /contacts and returns the greeting message.
func (c *Client) CreateContact(ctx context.Context, firstName, lastName string) (string, error) {
	var out messageResponse
	err := c.do(ctx, http.MethodPost, "/contacts", createContactRequest{FirstName: firstName, LastName: lastName}, &out)
	return out.Message, err
}

// Health calls GET /healthz.
func (c *Client) Health(ctx context.Context) (map[string]string, error) {
	var out map[string]string
	err := c.do(ctx, http.MethodGet, "/healthz", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var msg messageResponse
		if err := json.NewDecoder(resp.Body).Decode(&msg); err == nil && msg.Message != "" {
			return &APIError{Status: resp.StatusCode, Message: msg.Message}
		}
		return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
