package provision

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sitecrew/backoffice/internal/models"
	"github.com/sitecrew/backoffice/internal/store"
	"github.com/sitecrew/backoffice/internal/telemetry"
)

// Outcome is the terminal state of profile reconciliation.
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnchanged Outcome = "unchanged"
)

// desiredProfile is the (company, role, names) a profile is reconciled toward.
type desiredProfile struct {
	companyID uuid.UUID
	role      models.Role
	firstName string
	lastName  string
}

// ensureProfile converges the identity's profile onto want.
//
//	no profile                 -> create            (OutcomeCreated)
//	company and role match     -> no write          (OutcomeUnchanged)
//	company or role mismatched -> overwrite in place (OutcomeUpdated)
//
// The profile is always read after the identity exists, so a stub row
// inserted alongside the identity is reconciled rather than duplicated.
func (e *Engine) ensureProfile(ctx context.Context, identity *models.Identity, want desiredProfile) (*models.Profile, Outcome, error) {
	profile, err := e.profiles.GetProfile(ctx, identity.ID)
	if err == nil {
		return e.reconcileProfile(ctx, profile, want)
	}
	if !errors.Is(err, store.ErrProfileNotFound) {
		return nil, "", storeError("lookup profile", err)
	}

	now := e.now()
	companyID := want.companyID
	profile = &models.Profile{
		UserID:          identity.ID,
		CompanyID:       &companyID,
		Role:            want.role,
		FirstName:       want.firstName,
		LastName:        want.lastName,
		PendingApproval: false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = e.profiles.CreateProfile(ctx, profile)
	if err == nil {
		zerolog.Ctx(ctx).Info().
			Str("user_id", identity.ID.String()).
			Str("company_id", companyID.String()).
			Str("role", string(want.role)).
			Msg("Created profile")
		return profile, OutcomeCreated, nil
	}
	if !errors.Is(err, store.ErrProfileAlreadyExists) {
		return nil, "", storeError("create profile", err)
	}

	// A row appeared between the read and the insert.
	telemetry.GetMetrics().ProfileConflictsTotal.Add(ctx, 1)

	profile, err = e.profiles.GetProfile(ctx, identity.ID)
	if err != nil {
		return nil, "", storeError("lookup profile", err)
	}

	return e.reconcileProfile(ctx, profile, want)
}

func (e *Engine) reconcileProfile(ctx context.Context, profile *models.Profile, want desiredProfile) (*models.Profile, Outcome, error) {
	if profile.Matches(want.companyID, want.role) {
		return profile, OutcomeUnchanged, nil
	}

	logger := zerolog.Ctx(ctx).With().Str("user_id", profile.UserID.String()).Logger()
	if profile.CompanyID != nil {
		logger = logger.With().Str("previous_company_id", profile.CompanyID.String()).Logger()
	}

	updated, err := e.profiles.UpdateProfile(ctx, profile.UserID, models.ProfilePatch{
		CompanyID:       want.companyID,
		Role:            want.role,
		FirstName:       want.firstName,
		LastName:        want.lastName,
		PendingApproval: false,
		UpdatedAt:       e.now(),
	})
	if err != nil {
		return nil, "", storeError("update profile", err)
	}

	logger.Info().
		Str("previous_role", string(profile.Role)).
		Str("company_id", want.companyID.String()).
		Str("role", string(want.role)).
		Msg("Reconciled profile")

	return updated, OutcomeUpdated, nil
}
