package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Identity is an account record in the external user directory.
// It is created once per email and never deleted by provisioning.
type Identity struct {
	ID        uuid.UUID    `json:"id"`
	Email     string       `json:"email"`
	Metadata  UserMetadata `json:"user_metadata"`
	CreatedAt time.Time    `json:"created_at"`
}

// UserMetadata is the typed metadata bag stored alongside an identity.
type UserMetadata struct {
	Role      Role   `json:"role"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Validate checks the metadata before it is handed to an identity store.
func (m UserMetadata) Validate() error {
	if !m.Role.Valid() {
		return errors.New("metadata role is invalid")
	}
	return nil
}
