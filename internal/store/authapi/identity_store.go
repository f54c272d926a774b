// Package authapi implements store.IdentityStore against a hosted auth
// service exposing a GoTrue-compatible admin API (/admin/users).
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sitecrew/backoffice/internal/models"
	"github.com/sitecrew/backoffice/internal/store"
	"golang.org/x/oauth2"
)

// Config holds the connection settings for the admin API.
type Config struct {
	// BaseURL is the auth service root, e.g. https://project.example.com/auth/v1
	BaseURL string

	// ServiceKey is the service-role key sent as both bearer token and apikey header.
	ServiceKey string

	// PageSize is the number of users fetched per List page.
	// Default: 200
	PageSize int

	// Timeout bounds each HTTP call.
	// Default: 10s
	Timeout time.Duration
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if c.ServiceKey == "" {
		return fmt.Errorf("service key is required")
	}
	return nil
}

// ApplyDefaults applies default values to unset configuration fields.
func (c *Config) ApplyDefaults() {
	if c.PageSize == 0 {
		c.PageSize = 200
	}
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
}

// IdentityStore implements store.IdentityStore over HTTP.
type IdentityStore struct {
	baseURL  string
	pageSize int
	client   *http.Client
}

var _ store.IdentityStore = (*IdentityStore)(nil)

// NewIdentityStore creates an admin API backed identity store.
func NewIdentityStore(cfg *Config) (*IdentityStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("auth api config is required")
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid auth api config: %w", err)
	}

	transport := &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.ServiceKey, TokenType: "Bearer"}),
		Base:   &apiKeyTransport{key: cfg.ServiceKey, base: http.DefaultTransport},
	}

	return &IdentityStore{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		pageSize: cfg.PageSize,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
	}, nil
}

// apiKeyTransport adds the apikey header expected by the hosted gateway.
type apiKeyTransport struct {
	key  string
	base http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("apikey", t.key)
	return t.base.RoundTrip(req)
}

type adminUser struct {
	ID           uuid.UUID           `json:"id"`
	Email        string              `json:"email"`
	UserMetadata models.UserMetadata `json:"user_metadata"`
	CreatedAt    time.Time           `json:"created_at"`
}

func (u adminUser) identity() *models.Identity {
	return &models.Identity{
		ID:        u.ID,
		Email:     u.Email,
		Metadata:  u.UserMetadata,
		CreatedAt: u.CreatedAt,
	}
}

type listUsersResponse struct {
	Users []adminUser `json:"users"`
}

type createUserRequest struct {
	Email        string              `json:"email"`
	Password     string              `json:"password"`
	EmailConfirm bool                `json:"email_confirm"`
	UserMetadata models.UserMetadata `json:"user_metadata"`
}

// apiError is the error envelope returned by the admin API.
type apiError struct {
	Code      int    `json:"code"`
	ErrorCode string `json:"error_code"`
	Msg       string `json:"msg"`
	Message   string `json:"message"`
}

func (e *apiError) text() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Message
}

// List fetches every user page by page.
func (s *IdentityStore) List(ctx context.Context) ([]*models.Identity, error) {
	var identities []*models.Identity

	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("per_page", strconv.Itoa(s.pageSize))

		var resp listUsersResponse
		if err := s.do(ctx, http.MethodGet, "/admin/users?"+q.Encode(), nil, &resp); err != nil {
			return nil, fmt.Errorf("failed to list users: %w", err)
		}

		for _, u := range resp.Users {
			identities = append(identities, u.identity())
		}

		if len(resp.Users) < s.pageSize {
			break
		}
	}

	log.Debug().Int("count", len(identities)).Msg("Listed identities")

	return identities, nil
}

// Create registers a new confirmed user.
func (s *IdentityStore) Create(ctx context.Context, email, password string, metadata models.UserMetadata) (*models.Identity, error) {
	if err := metadata.Validate(); err != nil {
		return nil, err
	}

	body := createUserRequest{
		Email:        email,
		Password:     password,
		EmailConfirm: true,
		UserMetadata: metadata,
	}

	var user adminUser
	if err := s.do(ctx, http.MethodPost, "/admin/users", body, &user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Debug().
		Str("identity_id", user.ID.String()).
		Str("role", string(metadata.Role)).
		Msg("Created identity")

	return user.identity(), nil
}

// Get fetches a user by ID.
func (s *IdentityStore) Get(ctx context.Context, id uuid.UUID) (*models.Identity, error) {
	var user adminUser
	if err := s.do(ctx, http.MethodGet, "/admin/users/"+id.String(), nil, &user); err != nil {
		var serr *statusError
		if errors.As(err, &serr) && serr.StatusCode == http.StatusNotFound {
			return nil, store.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user.identity(), nil
}

func (s *IdentityStore) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// statusError is a non-2xx response that maps to no store sentinel.
type statusError struct {
	StatusCode int
	Message    string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("auth api returned HTTP %d: %s", e.StatusCode, e.Message)
}

// decodeError turns a non-2xx response into a store sentinel where one applies.
// A 404 is only meaningful to the caller that addressed a single user.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var apiErr apiError
	_ = json.Unmarshal(raw, &apiErr)

	msg := apiErr.text()
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}

	switch {
	case apiErr.ErrorCode == "email_exists",
		strings.Contains(strings.ToLower(msg), "already been registered"),
		strings.Contains(strings.ToLower(msg), "already registered"):
		return store.ErrIdentityAlreadyExists
	}

	return &statusError{StatusCode: resp.StatusCode, Message: msg}
}
