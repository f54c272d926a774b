package provision

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/sitecrew/backoffice/internal/models"
	"github.com/sitecrew/backoffice/internal/store"
	"github.com/sitecrew/backoffice/internal/telemetry"
)

// ensureIdentity returns the identity for p.email, creating it when absent.
// An existing identity is returned unchanged; its password is never reset.
func (e *Engine) ensureIdentity(ctx context.Context, p *params, role models.Role) (*models.Identity, bool, error) {
	identity, err := store.FindIdentityByEmail(ctx, e.identities, p.email)
	if err == nil {
		return identity, false, nil
	}
	if !errors.Is(err, store.ErrIdentityNotFound) {
		return nil, false, storeError("list identities", err)
	}

	metadata := models.UserMetadata{
		Role:      role,
		FirstName: p.firstName,
		LastName:  p.lastName,
	}

	identity, err = e.identities.Create(ctx, p.email, p.password, metadata)
	if err == nil {
		zerolog.Ctx(ctx).Info().
			Str("identity_id", identity.ID.String()).
			Str("role", string(role)).
			Msg("Created identity")
		return identity, true, nil
	}
	if !errors.Is(err, store.ErrIdentityAlreadyExists) {
		return nil, false, storeError("create identity", err)
	}

	// Lost a race with a concurrent request for the same email.
	telemetry.GetMetrics().IdentityConflictsTotal.Add(ctx, 1)

	identity, rerr := store.FindIdentityByEmail(ctx, e.identities, p.email)
	if rerr != nil {
		return nil, false, storeError("create identity", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("identity_id", identity.ID.String()).
		Msg("Identity already registered, continuing with existing identity")

	return identity, false, nil
}
