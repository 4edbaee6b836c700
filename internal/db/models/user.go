// Package models - user.go defines the User model: an authenticated LMS account with
// its role and the organizations it owns or belongs to.
package models

import "time"

// User represents an authenticated account
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
	// OrganizationID is the organization the user belongs to, if any.
	OrganizationID *int64 `json:"organization_id,omitempty"`
	// OwnedOrganizationID is the organization whose owner_user_id is this user.
	// It is computed by the user store, not stored on the users row.
	OwnedOrganizationID *int64    `json:"owned_organization_id,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// PrimaryOrganizationID returns the owned organization when present, otherwise
// the belongs-to organization. The boolean reports whether the id came from ownership.
func (u *User) PrimaryOrganizationID() (id int64, owned bool, ok bool) {
	if u == nil {
		return 0, false, false
	}
	if u.OwnedOrganizationID != nil {
		return *u.OwnedOrganizationID, true, true
	}
	if u.OrganizationID != nil {
		return *u.OrganizationID, false, true
	}
	return 0, false, false
}
