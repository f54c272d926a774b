package provision

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/sitecrew/backoffice/internal/models"
)

// DefaultSuperAdminMarker is the email fragment that identifies platform operators.
const DefaultSuperAdminMarker = "superadmin"

// SuperAdminMatcher reports whether an email belongs to a platform operator.
type SuperAdminMatcher func(email string) bool

// MatchEmailContaining matches emails containing marker, ignoring case.
// An empty marker matches nothing.
func MatchEmailContaining(marker string) SuperAdminMatcher {
	marker = strings.ToLower(strings.TrimSpace(marker))
	return func(email string) bool {
		return marker != "" && strings.Contains(strings.ToLower(email), marker)
	}
}

// MatchEmailRegexp matches emails against re.
func MatchEmailRegexp(re *regexp.Regexp) SuperAdminMatcher {
	return func(email string) bool {
		return re.MatchString(email)
	}
}

// ResolveRole picks the role to provision. A company always gets an admin;
// without one the matcher decides between super_admin and admin.
func ResolveRole(email string, companyID *uuid.UUID, match SuperAdminMatcher) models.Role {
	if companyID != nil {
		return models.RoleAdmin
	}
	if match != nil && match(email) {
		return models.RoleSuperAdmin
	}
	return models.RoleAdmin
}
