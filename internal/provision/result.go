package provision

import (
	"net/http"

	"github.com/sitecrew/backoffice/internal/models"
)

// Result is the outcome of a successful provisioning call.
type Result struct {
	Success bool             `json:"success"`
	User    *models.Identity `json:"user"`
	Profile *models.Profile  `json:"profile"`
	Message string           `json:"message"`
	// Status is 201 when the identity or profile was created, else 200.
	Status int `json:"status"`

	IdentityCreated bool    `json:"-"`
	Outcome         Outcome `json:"-"`
}

func newResult(identity *models.Identity, identityCreated bool, profile *models.Profile, outcome Outcome, role models.Role) *Result {
	res := &Result{
		Success:         true,
		User:            identity,
		Profile:         profile,
		Status:          http.StatusOK,
		IdentityCreated: identityCreated,
		Outcome:         outcome,
	}

	if identityCreated || outcome == OutcomeCreated {
		res.Status = http.StatusCreated
	}

	switch {
	case res.Status == http.StatusCreated && role == models.RoleSuperAdmin:
		res.Message = "Super admin created successfully"
	case res.Status == http.StatusCreated:
		res.Message = "Admin user created successfully"
	case outcome == OutcomeUpdated:
		res.Message = "User profile updated successfully"
	default:
		res.Message = "User already exists with the requested profile"
	}

	return res
}
