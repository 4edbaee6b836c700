// Package models - organization_role.go defines organization-scoped roles: named
// permission sets assigned to users within one organization.
package models

import "time"

// OrganizationRole is a named permission set inside one organization
type OrganizationRole struct {
	ID             int64     `db:"id" json:"id"`
	OrganizationID int64     `db:"organization_id" json:"organization_id"`
	Name           string    `db:"name" json:"name"`
	Permissions    []string  `db:"-" json:"permissions"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Grants reports whether the role carries perm.
func (r *OrganizationRole) Grants(perm string) bool {
	for _, p := range r.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
