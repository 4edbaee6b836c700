// Package models - super_admin.go defines super-admin role assignments, which can be
// deactivated or given an expiry independently of the account role.
package models

import "time"

// SuperAdminRoleAssignment grants a super-admin role to a user
type SuperAdminRoleAssignment struct {
	ID        int64      `db:"id" json:"id"`
	UserID    int64      `db:"user_id" json:"user_id"`
	RoleName  string     `db:"role_name" json:"role_name"`
	IsActive  bool       `db:"is_active" json:"is_active"`
	ExpiresAt *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// IsEffective reports whether the assignment is active and unexpired at now.
func (a *SuperAdminRoleAssignment) IsEffective(now time.Time) bool {
	if !a.IsActive {
		return false
	}
	return a.ExpiresAt == nil || a.ExpiresAt.After(now)
}
