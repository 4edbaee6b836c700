// Package auth - principal.go defines the authenticated principal seen by the access
// guard. Quality guests carry an extra capability payload loaded from their invitation.
package auth

import (
	"github.com/lms-platform/lms-backend/internal/db/models"
)

// GuestGrant is the capability payload of a quality-guest principal.
type GuestGrant struct {
	InvitationID    int64
	OrganizationID  int64
	Permissions     []string
	IndicatorAccess []int64
}

// NewGuestGrant builds the grant carried by a quality guest from their accepted invitation.
func NewGuestGrant(inv *models.QualityGuestInvitation) *GuestGrant {
	return &GuestGrant{
		InvitationID:    inv.ID,
		OrganizationID:  inv.OrganizationID,
		Permissions:     append([]string(nil), inv.Permissions...),
		IndicatorAccess: append([]int64(nil), inv.IndicatorAccess...),
	}
}

// HasPermission reports whether the grant carries perm.
func (g *GuestGrant) HasPermission(perm Permission) bool {
	return g != nil && containsPermission(g.Permissions, perm)
}

// CanAccessIndicator reports whether id is inside the grant's indicator scope.
func (g *GuestGrant) CanAccessIndicator(id int64) bool {
	if g == nil {
		return false
	}
	for _, allowed := range g.IndicatorAccess {
		if allowed == id {
			return true
		}
	}
	return false
}

// Principal is the authenticated identity of a request.
type Principal struct {
	User *models.User
	// Guest is set only for quality_guest principals, once their invitation is loaded.
	Guest *GuestGrant
}

// NewPrincipal wraps an authenticated user.
func NewPrincipal(user *models.User) *Principal {
	return &Principal{User: user}
}

// ID returns the user id, or 0 for a nil principal.
func (p *Principal) ID() int64 {
	if p == nil || p.User == nil {
		return 0
	}
	return p.User.ID
}

// Role returns the principal's role; RoleUnknown for a nil principal.
func (p *Principal) Role() models.Role {
	if p == nil || p.User == nil {
		return models.RoleUnknown
	}
	return p.User.Role
}

// HasRole reports whether the principal holds one of roles.
func (p *Principal) HasRole(roles ...models.Role) bool {
	role := p.Role()
	if role == models.RoleUnknown {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// GuestGrant returns the quality-guest grant, or nil.
func (p *Principal) GuestGrant() *GuestGrant {
	if p == nil {
		return nil
	}
	return p.Guest
}

// IsQualityGuest reports whether the principal is a quality guest.
func (p *Principal) IsQualityGuest() bool {
	return p.Role() == models.RoleQualityGuest
}

// BelongsTo reports whether the principal owns or belongs to orgID.
func (p *Principal) BelongsTo(orgID int64) bool {
	if p == nil || p.User == nil {
		return false
	}
	u := p.User
	return (u.OwnedOrganizationID != nil && *u.OwnedOrganizationID == orgID) ||
		(u.OrganizationID != nil && *u.OrganizationID == orgID)
}
