package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/sitecrew/backoffice/internal/models"
)

// RegistrationStore holds the self-registration side of the company lifecycle.
// Implementations usually share their backing storage with ProfileStore.
type RegistrationStore interface {
	// SubmitRegistration creates a company and its registration request in one
	// atomic write. Neither row exists if either insert fails.
	// Returns ErrCompanyAlreadyExists if the company name is taken.
	SubmitRegistration(ctx context.Context, company *models.Company, req *models.RegistrationRequest) error

	// CreateRegistrationRequest records a new registration request for a company.
	CreateRegistrationRequest(ctx context.Context, req *models.RegistrationRequest) error

	// GetRegistrationRequest retrieves the registration request of a company.
	// Returns ErrRegistrationRequestNotFound if the company has none.
	GetRegistrationRequest(ctx context.Context, companyID uuid.UUID) (*models.RegistrationRequest, error)

	// ListRegistrationRequests returns requests in the given status, newest first.
	// An empty status returns all requests.
	ListRegistrationRequests(ctx context.Context, status models.RegistrationStatus) ([]*models.RegistrationRequest, error)

	// UpdateCompanyStatus moves a company to a new lifecycle status.
	// Returns ErrCompanyNotFound if the company doesn't exist.
	UpdateCompanyStatus(ctx context.Context, companyID uuid.UUID, status models.CompanyStatus) error
}
