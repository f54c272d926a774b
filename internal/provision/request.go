package provision

import (
	"strings"

	"github.com/google/uuid"
)

const (
	defaultFirstName = "Super"
	defaultLastName  = "Admin"
)

// Request is the input of a provisioning call.
type Request struct {
	Email       string `json:"email" yaml:"email"`
	Password    string `json:"password" yaml:"password"`
	FirstName   string `json:"firstName,omitempty" yaml:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty" yaml:"lastName,omitempty"`
	CompanyID   string `json:"companyId,omitempty" yaml:"companyId,omitempty"`
	CompanyName string `json:"companyName,omitempty" yaml:"companyName,omitempty"`
}

// params is a validated request with defaults applied.
type params struct {
	email       string
	password    string
	firstName   string
	lastName    string
	companyID   *uuid.UUID
	companyName string
}

// Validate checks the request without side effects. Email is checked first.
func (r Request) Validate() error {
	_, err := r.params()
	return err
}

func (r Request) params() (*params, error) {
	email := strings.TrimSpace(r.Email)
	if email == "" {
		return nil, &ValidationError{Field: "email", Message: "Email is required"}
	}
	if r.Password == "" {
		return nil, &ValidationError{Field: "password", Message: "Password is required"}
	}

	p := &params{
		email:       email,
		password:    r.Password,
		firstName:   strings.TrimSpace(r.FirstName),
		lastName:    strings.TrimSpace(r.LastName),
		companyName: strings.TrimSpace(r.CompanyName),
	}

	if p.firstName == "" {
		p.firstName = defaultFirstName
	}
	if p.lastName == "" {
		p.lastName = defaultLastName
	}

	if id := strings.TrimSpace(r.CompanyID); id != "" {
		companyID, err := uuid.Parse(id)
		if err != nil {
			return nil, &ValidationError{Field: "companyId", Message: "Company ID must be a valid UUID"}
		}
		p.companyID = &companyID
	}

	return p, nil
}
