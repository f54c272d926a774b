package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sitecrew/backoffice/internal/models"
)

// Sentinel errors for identity store operations
var (
	ErrIdentityNotFound = errors.New("identity not found")
	// ErrIdentityAlreadyExists is returned when the email is already registered.
	ErrIdentityAlreadyExists = errors.New("a user with this email address has already been registered")
)

// IdentityStore defines the interface for the external user-account directory.
// Identities are created once per email and never deleted by this service.
type IdentityStore interface {
	// List returns every identity in the directory.
	// The directory offers no lookup by email, so callers filter the result.
	List(ctx context.Context) ([]*models.Identity, error)

	// Create registers a new identity with the given password and metadata.
	// Returns ErrIdentityAlreadyExists if the email is already registered.
	Create(ctx context.Context, email, password string, metadata models.UserMetadata) (*models.Identity, error)

	// Get retrieves an identity by ID.
	// Returns ErrIdentityNotFound if the identity doesn't exist.
	Get(ctx context.Context, id uuid.UUID) (*models.Identity, error)
}

// FindIdentityByEmail scans the directory for an exact email match.
// Returns ErrIdentityNotFound when no identity carries the email.
func FindIdentityByEmail(ctx context.Context, identities IdentityStore, email string) (*models.Identity, error) {
	all, err := identities.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, identity := range all {
		if identity.Email == email {
			return identity, nil
		}
	}
	return nil, ErrIdentityNotFound
}
