package auth

import (
	"slices"
)

// Permission represents an authorized action
type Permission string

const (
	PermProvisionAdmins     Permission = "admins:provision"
	PermSubmitRegistrations Permission = "registrations:submit"
	PermReviewRegistrations Permission = "registrations:review"
)

// Token roles recognised by the API.
const (
	RoleServiceRole = "service_role" // Backend automation holding the service key
	RoleSuperAdmin  = "super_admin"  // Platform operator
	RoleAnon        = "anon"         // Public client key
)

// RolePermissions maps token roles to allowed permissions
var RolePermissions = map[string][]Permission{
	RoleServiceRole: {
		PermProvisionAdmins,
		PermSubmitRegistrations,
		PermReviewRegistrations,
	},
	RoleSuperAdmin: {
		PermProvisionAdmins,
		PermSubmitRegistrations,
		PermReviewRegistrations,
	},
	RoleAnon: {
		PermSubmitRegistrations,
	},
}

// HasPermission reports whether role grants perm.
func HasPermission(role string, perm Permission) bool {
	return slices.Contains(RolePermissions[role], perm)
}
