package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSender writes welcome emails to the request logger instead of delivering them.
// Used for local development and the in-memory stack.
type LogSender struct{}

var _ Notifier = LogSender{}

// SendWelcomeEmail logs the email and returns a synthetic receipt.
func (LogSender) SendWelcomeEmail(ctx context.Context, email WelcomeEmail) (*Receipt, error) {
	if err := email.Validate(); err != nil {
		return nil, err
	}

	receipt := newReceipt()

	zerolog.Ctx(ctx).Info().
		Str("to", email.To).
		Str("company", email.CompanyName).
		Str("message_id", receipt.MessageID).
		Msg("Welcome email (log only)")

	return receipt, nil
}
