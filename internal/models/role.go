package models

// Role is the application role bound to a profile.
type Role string

const (
	RoleSuperAdmin Role = "super_admin" // Platform operator, owns the Super Admin Company
	RoleAdmin      Role = "admin"       // Company administrator
	RoleForeman    Role = "foreman"     // Site foreman, approves timesheets
	RolePayroll    Role = "payroll"     // Payroll clerk
	RoleEmployee   Role = "employee"    // Field employee
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleForeman, RolePayroll, RoleEmployee:
		return true
	}
	return false
}
