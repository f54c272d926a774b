package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sitecrew/backoffice/internal/models"
)

// Sentinel errors for profile, company and registration operations
var (
	ErrProfileNotFound             = errors.New("profile not found")
	ErrProfileAlreadyExists        = errors.New("profile already exists")
	ErrCompanyNotFound             = errors.New("company not found")
	ErrCompanyAlreadyExists        = errors.New("company already exists")
	ErrRegistrationRequestNotFound = errors.New("registration request not found")
)

// ProfileStore defines the relational store holding profiles, companies and
// registration requests.
type ProfileStore interface {
	// GetProfile retrieves the profile bound to an identity.
	// Returns ErrProfileNotFound if the identity has no profile.
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)

	// CreateProfile inserts a new profile.
	// Returns ErrProfileAlreadyExists if the identity already has one.
	CreateProfile(ctx context.Context, profile *models.Profile) error

	// UpdateProfile overwrites the reconciled fields of an existing profile.
	// Returns ErrProfileNotFound if the identity has no profile.
	UpdateProfile(ctx context.Context, userID uuid.UUID, patch models.ProfilePatch) (*models.Profile, error)

	// GetCompany retrieves a company by ID.
	// Returns ErrCompanyNotFound if the company doesn't exist.
	GetCompany(ctx context.Context, companyID uuid.UUID) (*models.Company, error)

	// GetCompanyByName retrieves a company by its exact name.
	// Returns ErrCompanyNotFound if no company carries the name.
	GetCompanyByName(ctx context.Context, name string) (*models.Company, error)

	// CreateCompany inserts a new company.
	// Returns ErrCompanyAlreadyExists if the ID or name is taken.
	CreateCompany(ctx context.Context, company *models.Company) error

	// UpdateRegistrationRequest updates the registration request of a company.
	// Returns ErrRegistrationRequestNotFound if the company has none.
	UpdateRegistrationRequest(ctx context.Context, companyID uuid.UUID, patch models.RegistrationPatch) error
}
