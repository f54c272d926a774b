package models

import (
	"time"

	"github.com/google/uuid"
)

// RegistrationStatus tracks where a company registration is in its approval lifecycle.
type RegistrationStatus string

const (
	RegistrationStatusPending  RegistrationStatus = "pending"
	RegistrationStatusApproved RegistrationStatus = "approved"
	RegistrationStatusRejected RegistrationStatus = "rejected"
)

// Valid reports whether s is a known registration status.
func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegistrationStatusPending, RegistrationStatusApproved, RegistrationStatusRejected:
		return true
	}
	return false
}

// RegistrationRequest is the audit record of a company's self-registration.
// It is history only; the profile and company records are the source of truth.
type RegistrationRequest struct {
	ID           uuid.UUID          `json:"id"`
	CompanyID    uuid.UUID          `json:"company_id"`
	Status       RegistrationStatus `json:"status"`
	ContactEmail string             `json:"contact_email"`
	ContactName  string             `json:"contact_name"`
	ApprovedAt   *time.Time         `json:"approved_at,omitempty"`
	RejectedAt   *time.Time         `json:"rejected_at,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}

// RegistrationPatch updates the status of a registration request.
type RegistrationPatch struct {
	Status     RegistrationStatus
	ApprovedAt *time.Time
	RejectedAt *time.Time
}
