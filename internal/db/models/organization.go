// Package models - organization.go defines the Organization model: a tenant of the
// LMS with its slug, optional custom domain, white-label branding and approval status.
package models

import "time"

// OrganizationStatus is the approval state of an organization.
type OrganizationStatus string

const (
	OrganizationStatusPending   OrganizationStatus = "pending"
	OrganizationStatusApproved  OrganizationStatus = "approved"
	OrganizationStatusSuspended OrganizationStatus = "suspended"
	OrganizationStatusRejected  OrganizationStatus = "rejected"
)

// Organization represents a tenant of the LMS
type Organization struct {
	ID           int64   `json:"id"`
	Slug         string  `json:"slug"`
	CustomDomain *string `json:"custom_domain,omitempty"`
	OwnerUserID  *int64  `json:"owner_user_id,omitempty"`

	// Branding; every field is optional.
	OrganizationName     *string `json:"organization_name,omitempty"`
	OrganizationLogo     *string `json:"organization_logo,omitempty"`
	OrganizationFavicon  *string `json:"organization_favicon,omitempty"`
	PrimaryColor         *string `json:"primary_color,omitempty"`
	SecondaryColor       *string `json:"secondary_color,omitempty"`
	AccentColor          *string `json:"accent_color,omitempty"`
	CustomCSS            *string `json:"custom_css,omitempty"`
	LoginBackgroundImage *string `json:"login_background_image,omitempty"`
	FooterText           *string `json:"footer_text,omitempty"`

	Status            OrganizationStatus `json:"status"`
	WhitelabelEnabled bool               `json:"whitelabel_enabled"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// IsApproved reports whether the organization may serve requests.
func (o *Organization) IsApproved() bool {
	return o != nil && o.Status == OrganizationStatusApproved
}

// DisplayName returns the branded name, falling back to the slug.
func (o *Organization) DisplayName() string {
	if o.OrganizationName != nil && *o.OrganizationName != "" {
		return *o.OrganizationName
	}
	return o.Slug
}
