package provision

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sitecrew/backoffice/internal/models"
	"github.com/sitecrew/backoffice/internal/telemetry"
)

// markApproved records the approval on the company's registration request.
// The request is history only, so failures are logged and dropped.
func (e *Engine) markApproved(ctx context.Context, companyID uuid.UUID) {
	now := e.now()

	err := e.profiles.UpdateRegistrationRequest(ctx, companyID, models.RegistrationPatch{
		Status:     models.RegistrationStatusApproved,
		ApprovedAt: &now,
	})
	if err != nil {
		telemetry.GetMetrics().RegistrationUpdateFailuresTotal.Add(ctx, 1)
		zerolog.Ctx(ctx).Warn().
			Err(err).
			Str("company_id", companyID.String()).
			Msg("Failed to mark registration request approved")
		return
	}

	zerolog.Ctx(ctx).Debug().
		Str("company_id", companyID.String()).
		Msg("Marked registration request approved")
}
