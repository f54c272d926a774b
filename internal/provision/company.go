package provision

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sitecrew/backoffice/internal/models"
	"github.com/sitecrew/backoffice/internal/store"
	"github.com/sitecrew/backoffice/internal/telemetry"
)

// lookupCompany loads the company named by an explicit companyId.
func (e *Engine) lookupCompany(ctx context.Context, companyID uuid.UUID) (*models.Company, error) {
	company, err := e.profiles.GetCompany(ctx, companyID)
	if err != nil {
		if errors.Is(err, store.ErrCompanyNotFound) {
			return nil, storeError("lookup company", fmt.Errorf("%w: %s", ErrCompanyNotFound, companyID))
		}
		return nil, storeError("lookup company", err)
	}
	return company, nil
}

// ensureSuperAdminCompany returns the company owning bootstrap-path profiles,
// creating it active when absent. Names are unique, so a concurrent creator
// surfaces as ErrCompanyAlreadyExists and the winner's row is used.
func (e *Engine) ensureSuperAdminCompany(ctx context.Context) (*models.Company, error) {
	company, err := e.profiles.GetCompanyByName(ctx, models.SuperAdminCompanyName)
	if err == nil {
		return company, nil
	}
	if !errors.Is(err, store.ErrCompanyNotFound) {
		return nil, storeError("lookup super admin company", err)
	}

	now := e.now()
	company = &models.Company{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      models.SuperAdminCompanyName,
		Status:    models.CompanyStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = e.profiles.CreateCompany(ctx, company)
	if err == nil {
		zerolog.Ctx(ctx).Info().
			Str("company_id", company.ID.String()).
			Msg("Created super admin company")
		return company, nil
	}
	if !errors.Is(err, store.ErrCompanyAlreadyExists) {
		return nil, storeError("create super admin company", err)
	}

	telemetry.GetMetrics().CompanyConflictsTotal.Add(ctx, 1)

	company, rerr := e.profiles.GetCompanyByName(ctx, models.SuperAdminCompanyName)
	if rerr != nil {
		return nil, storeError("create super admin company", err)
	}

	return company, nil
}
