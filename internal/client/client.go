package client

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

	"github.com/google/uuid"
	"github.com/sitecrew/backoffice/internal/models"
	"github.com/sitecrew/backoffice/internal/provision"
	"github.com/sitecrew/backoffice/internal/registration"
	"golang.org/x/oauth2"
)

// Config holds common client configuration
type Config struct {
	ServerURL string
	Token     string
	Timeout   time.Duration
}

// DefaultConfig returns a default client configuration
func DefaultConfig() Config {
	return Config{
		ServerURL: "http://localhost:8080",
		Timeout:   30 * time.Second,
	}
}

// APIError is a non-2xx response from the back office API.
type APIError struct {
	StatusCode int
	Message    string `json:"error"`
	Details    string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("HTTP %d: %s: %s", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Client calls the back office HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client. A non-empty token is sent as a bearer token.
func New(config Config) *Client {
	httpClient := &http.Client{
		Timeout: config.Timeout,
	}

	if config.Token != "" {
		httpClient.Transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: config.Token}),
			Base:   http.DefaultTransport,
		}
	}

	return &Client{
		baseURL:    strings.TrimRight(config.ServerURL, "/"),
		httpClient: httpClient,
	}
}

// Provision calls POST /create-super-admin.
func (c *Client) Provision(ctx context.Context, req provision.Request) (*provision.Result, error) {
	res := &provision.Result{}
	if err := c.do(ctx, http.MethodPost, "/create-super-admin", req, res); err != nil {
		return nil, err
	}
	return res, nil
}

// SubmitRegistration calls POST /registrations.
func (c *Client) SubmitRegistration(ctx context.Context, sub registration.Submission) (*registration.Submitted, error) {
	res := &registration.Submitted{}
	if err := c.do(ctx, http.MethodPost, "/registrations", sub, res); err != nil {
		return nil, err
	}
	return res, nil
}

// ListRegistrations calls GET /registrations, optionally filtered by status.
func (c *Client) ListRegistrations(ctx context.Context, status models.RegistrationStatus) ([]*models.RegistrationRequest, error) {
	path := "/registrations"
	if status != "" {
		path += "?" + url.Values{"status": {string(status)}}.Encode()
	}

	var res struct {
		Registrations []*models.RegistrationRequest `json:"registrations"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return res.Registrations, nil
}

// RejectRegistration calls POST /registrations/{companyId}/reject.
func (c *Client) RejectRegistration(ctx context.Context, companyID uuid.UUID) (*models.RegistrationRequest, error) {
	res := &models.RegistrationRequest{}
	if err := c.do(ctx, http.MethodPost, "/registrations/"+companyID.String()+"/reject", nil, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
