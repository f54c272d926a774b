package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
)

// HTTPSenderConfig configures delivery through a transactional email HTTP API.
type HTTPSenderConfig struct {
	// Endpoint receives POSTed messages, e.g. https://api.mailer.example/emails
	Endpoint string

	// APIKey is sent as a bearer token.
	APIKey string

	// From is the sender address.
	From string

	// LoginURL is linked from the email body.
	LoginURL string

	// MaxTries bounds delivery attempts.
	// Default: 4
	MaxTries uint

	// Timeout bounds each HTTP call.
	// Default: 10s
	Timeout time.Duration
}

// Validate checks that the configuration is usable.
func (c *HTTPSenderConfig) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("mail endpoint is required")
	}
	if c.From == "" {
		return fmt.Errorf("mail from address is required")
	}
	return nil
}

// ApplyDefaults applies default values to unset configuration fields.
func (c *HTTPSenderConfig) ApplyDefaults() {
	if c.MaxTries == 0 {
		c.MaxTries = 4
	}
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
}

// HTTPSender posts welcome emails to a transactional email API, retrying
// transient failures with exponential backoff.
type HTTPSender struct {
	cfg     HTTPSenderConfig
	client  *http.Client
	backoff func() backoff.BackOff
}

var _ Notifier = (*HTTPSender)(nil)

// NewHTTPSender creates a sender from the given configuration.
func NewHTTPSender(cfg HTTPSenderConfig) (*HTTPSender, error) {
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mail config: %w", err)
	}

	return &HTTPSender{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		backoff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}, nil
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendWelcomeEmail renders and delivers the welcome email.
func (s *HTTPSender) SendWelcomeEmail(ctx context.Context, email WelcomeEmail) (*Receipt, error) {
	if err := email.Validate(); err != nil {
		return nil, err
	}

	if email.LoginURL == "" {
		email.LoginURL = s.cfg.LoginURL
	}

	html, err := RenderWelcome(email)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(sendRequest{
		From:    s.cfg.From,
		To:      []string{email.To},
		Subject: welcomeSubject,
		HTML:    html,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode email: %w", err)
	}

	logger := zerolog.Ctx(ctx)

	receipt, err := backoff.Retry(ctx, func() (*Receipt, error) {
		return s.post(ctx, payload)
	},
		backoff.WithBackOff(s.backoff()),
		backoff.WithMaxTries(s.cfg.MaxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Warn().Err(err).Dur("retry_in", next).Str("to", email.To).Msg("Welcome email delivery failed, retrying")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send welcome email: %w", err)
	}

	logger.Info().Str("to", email.To).Str("message_id", receipt.MessageID).Msg("Welcome email sent")

	return receipt, nil
}

// post performs a single delivery attempt. 4xx responses other than 429 are permanent.
func (s *HTTPSender) post(ctx context.Context, payload []byte) (*Receipt, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
			return nil, backoff.RetryAfter(secs)
		}
		return nil, fmt.Errorf("mail API rate limited")
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("mail API returned HTTP %d", resp.StatusCode)
	case resp.StatusCode >= 300:
		return nil, backoff.Permanent(fmt.Errorf("mail API returned HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(body)))
	}

	receipt := newReceipt()
	var accepted Receipt
	if err := json.Unmarshal(body, &accepted); err == nil && accepted.MessageID != "" {
		receipt.MessageID = accepted.MessageID
	}

	return receipt, nil
}
