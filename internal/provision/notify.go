package provision

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/sitecrew/backoffice/internal/notify"
	"github.com/sitecrew/backoffice/internal/telemetry"
)

// sendWelcome delivers the welcome email. Failures never reach the caller.
func (e *Engine) sendWelcome(ctx context.Context, email notify.WelcomeEmail) {
	logger := zerolog.Ctx(ctx)

	receipt, err := e.notifier.SendWelcomeEmail(ctx, email)
	if err != nil {
		telemetry.GetMetrics().NotificationFailuresTotal.Add(ctx, 1)
		logger.Warn().Err(err).Str("to", email.To).Msg("Failed to send welcome email")
		return
	}

	telemetry.GetMetrics().NotificationsSentTotal.Add(ctx, 1)

	event := logger.Info().Str("to", email.To)
	if receipt != nil {
		event = event.Str("message_id", receipt.MessageID)
	}
	event.Msg("Sent welcome email")
}
