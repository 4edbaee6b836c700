// Package models - role.go is the single home of the LMS account role vocabulary.
package models

import "strings"

// Role is the closed set of account roles.
type Role string

const (
	RoleOrganization Role = "organization"
	RoleInstructor   Role = "instructor"
	RoleLearner      Role = "learner"
	RoleSuperAdmin   Role = "super_admin"
	RoleQualityGuest Role = "quality_guest"

	// RoleUnknown is produced by ParseRole for unrecognised values and never
	// satisfies a role check.
	RoleUnknown Role = ""
)

// AllRoles lists every valid role.
var AllRoles = []Role{
	RoleOrganization,
	RoleInstructor,
	RoleLearner,
	RoleSuperAdmin,
	RoleQualityGuest,
}

// ParseRole converts a stored role string into a Role.
func ParseRole(s string) Role {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if r.Valid() {
		return r
	}
	return RoleUnknown
}

// Valid reports whether r is one of AllRoles.
func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	if r == RoleUnknown {
		return "unknown"
	}
	return string(r)
}
