package models

import (
	"time"

	"github.com/google/uuid"
)

// CompanyStatus is the lifecycle state of a company (tenant).
type CompanyStatus string

const (
	CompanyStatusPending  CompanyStatus = "pending"
	CompanyStatusActive   CompanyStatus = "active"
	CompanyStatusInactive CompanyStatus = "inactive"
	CompanyStatusRejected CompanyStatus = "rejected"
	CompanyStatusRevoked  CompanyStatus = "revoked"
)

// SuperAdminCompanyName is the fixed name of the company that owns super admins.
const SuperAdminCompanyName = "Super Admin Company"

// Company represents a construction company using the back office.
type Company struct {
	ID        uuid.UUID     `json:"id"` // UUIDv7
	Name      string        `json:"name"`
	Status    CompanyStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
