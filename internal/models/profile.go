package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile binds an Identity to a Company and a Role.
// There is exactly one profile per identity, keyed by UserID.
type Profile struct {
	UserID          uuid.UUID  `json:"user_id"`
	CompanyID       *uuid.UUID `json:"company_id"` // nil only transiently (trigger-created stub rows)
	Role            Role       `json:"role"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	PendingApproval bool       `json:"pending_approval"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Matches reports whether the profile is already bound to the given company and role.
func (p *Profile) Matches(companyID uuid.UUID, role Role) bool {
	return p.CompanyID != nil && *p.CompanyID == companyID && p.Role == role
}

// ProfilePatch is the full set of fields overwritten when a profile is reconciled.
type ProfilePatch struct {
	CompanyID       uuid.UUID
	Role            Role
	FirstName       string
	LastName        string
	PendingApproval bool
	UpdatedAt       time.Time
}

// Apply copies the patch onto the profile.
func (pp ProfilePatch) Apply(p *Profile) {
	companyID := pp.CompanyID
	p.CompanyID = &companyID
	p.Role = pp.Role
	p.FirstName = pp.FirstName
	p.LastName = pp.LastName
	p.PendingApproval = pp.PendingApproval
	p.UpdatedAt = pp.UpdatedAt
}
