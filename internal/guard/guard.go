package guard

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/lms-platform/lms-backend/internal/auth"
	"github.com/lms-platform/lms-backend/internal/db/models"
)

// OrganizationStore loads organizations by id.
type OrganizationStore interface {
	GetByID(ctx context.Context, id int64) (*models.Organization, error)
}

// RoleStore reads organization role assignments.
type RoleStore interface {
	ListAssignedRoles(ctx context.Context, userID, orgID int64) ([]*models.OrganizationRole, error)
	HasRoleInOrganization(ctx context.Context, userID, orgID int64) (bool, error)
}

// SuperAdminStore reads super-admin role assignments.
type SuperAdminStore interface {
	ListAssignments(ctx context.Context, userID int64) ([]*models.SuperAdminRoleAssignment, error)
}

// InvitationStore reads quality-guest invitations.
type InvitationStore interface {
	GetAcceptedInvitation(ctx context.Context, userID int64) (*models.QualityGuestInvitation, error)
}

// Stores groups the read models the guard consults.
type Stores struct {
	Organizations OrganizationStore
	Roles         RoleStore
	SuperAdmins   SuperAdminStore
	Invitations   InvitationStore
}

// Guard evaluates access checks that need store lookups.
type Guard struct {
	stores      Stores
	guestRoutes *Allowlist
	debug       bool
	now         func() time.Time
}

// Option configures a Guard
type Option func(*Guard)

// WithDebugErrors attaches diagnostic payloads to organization rejections.
func WithDebugErrors(enabled bool) Option {
	return func(g *Guard) { g.debug = enabled }
}

// WithClock overrides the clock used for assignment expiry.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) { g.now = now }
}

// New creates a Guard. guestRoutes restricts the paths quality guests may reach.
func New(stores Stores, guestRoutes *Allowlist, opts ...Option) *Guard {
	g := &Guard{stores: stores, guestRoutes: guestRoutes, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CheckAuthenticated rejects requests without a principal.
func CheckAuthenticated(p *auth.Principal) error {
	if p == nil || p.User == nil {
		return Reject(KindUnauthenticated, "")
	}
	return nil
}

// CheckRole rejects principals that hold none of roles.
func CheckRole(p *auth.Principal, roles ...models.Role) error {
	if err := CheckAuthenticated(p); err != nil {
		return err
	}
	if !p.HasRole(roles...) {
		return Reject(KindRoleMismatch, "")
	}
	return nil
}

// CheckOrganizationStatus maps a missing organization to 404 and an unapproved
// one to 403.
func CheckOrganizationStatus(org *models.Organization) error {
	if org == nil {
		return Reject(KindOrganizationNotFound, "")
	}
	if !org.IsApproved() {
		return Reject(KindOrganizationInactive, "")
	}
	return nil
}

// ResolveOrganizationScope returns the organization a scoped request acts on.
// A non-empty header value selects an organization the principal owns, belongs
// to or holds a role in; otherwise the owned organization wins over membership.
func (g *Guard) ResolveOrganizationScope(ctx context.Context, p *auth.Principal, header string) (int64, error) {
	if err := CheckAuthenticated(p); err != nil {
		return 0, err
	}

	if header = strings.TrimSpace(header); header != "" {
		id, err := strconv.ParseInt(header, 10, 64)
		if err != nil || id <= 0 {
			return 0, Reject(KindPermissionDenied, "Invalid organization identifier.")
		}
		if p.BelongsTo(id) {
			return id, nil
		}
		ok, err := g.stores.Roles.HasRoleInOrganization(ctx, p.ID(), id)
		if err != nil {
			return 0, Internal("check organization role", err)
		}
		if !ok {
			return 0, Reject(KindPermissionDenied, "Access denied to the requested organization.")
		}
		return id, nil
	}

	if id, _, ok := p.User.PrimaryOrganizationID(); ok {
		return id, nil
	}
	return 0, g.organizationRejection(KindOrganizationMissing, p, nil)
}

// LoadOrganization fetches orgID and checks it is approved.
func (g *Guard) LoadOrganization(ctx context.Context, p *auth.Principal, orgID int64) (*models.Organization, error) {
	org, err := g.stores.Organizations.GetByID(ctx, orgID)
	if err != nil {
		return nil, Internal("load organization", err)
	}
	if err := CheckOrganizationStatus(org); err != nil {
		rej := AsRejection(err)
		if rej.Kind == KindInternal {
			return nil, rej
		}
		return nil, g.organizationRejection(rej.Kind, p, &orgID)
	}
	return org, nil
}

// CheckPermission accepts when any role assigned to p in orgID grants perm.
func (g *Guard) CheckPermission(ctx context.Context, p *auth.Principal, orgID int64, perm auth.Permission) error {
	if err := CheckAuthenticated(p); err != nil {
		return err
	}
	roles, err := g.stores.Roles.ListAssignedRoles(ctx, p.ID(), orgID)
	if err != nil {
		return Internal("list organization roles", err)
	}
	if _, ok := auth.GrantingRole(roles, perm); !ok {
		return Reject(KindPermissionDenied, "Missing required permission: "+string(perm))
	}
	return nil
}

// CheckQualityGuest admits a quality guest with an accepted invitation to an
// allowlisted path and returns the grant carried by the invitation.
func (g *Guard) CheckQualityGuest(ctx context.Context, p *auth.Principal, path string) (*auth.GuestGrant, error) {
	if err := CheckRole(p, models.RoleQualityGuest); err != nil {
		return nil, err
	}
	inv, err := g.stores.Invitations.GetAcceptedInvitation(ctx, p.ID())
	if err != nil {
		return nil, Internal("load quality guest invitation", err)
	}
	if !inv.IsAccepted() {
		return nil, Reject(KindInvitationInvalid, "")
	}
	if !g.guestRoutes.Match(path) {
		return nil, Reject(KindRouteNotAllowlisted, "")
	}
	return auth.NewGuestGrant(inv), nil
}

// CheckIndicator rejects indicator ids outside the guest's invitation scope.
func CheckIndicator(grant *auth.GuestGrant, indicatorID int64) error {
	if grant == nil {
		return Reject(KindInvitationInvalid, "")
	}
	if !grant.CanAccessIndicator(indicatorID) {
		return Reject(KindResourceOutOfScope, "Access denied to this indicator")
	}
	return nil
}

// CheckGuestPermission rejects guests whose invitation lacks perm.
func CheckGuestPermission(grant *auth.GuestGrant, perm auth.Permission) error {
	if grant == nil {
		return Reject(KindInvitationInvalid, "")
	}
	if !grant.HasPermission(perm) {
		return Reject(KindPermissionDenied, "Missing required permission: "+string(perm))
	}
	return nil
}

// CheckSuperAdmin accepts super_admin principals with at least one effective
// role assignment.
func (g *Guard) CheckSuperAdmin(ctx context.Context, p *auth.Principal) error {
	if err := CheckRole(p, models.RoleSuperAdmin); err != nil {
		return err
	}
	assignments, err := g.stores.SuperAdmins.ListAssignments(ctx, p.ID())
	if err != nil {
		return Internal("list super admin assignments", err)
	}
	now := g.now()
	for _, a := range assignments {
		if a.IsEffective(now) {
			return nil
		}
	}
	return Reject(KindRoleMismatch, "Super admin access required.")
}

func (g *Guard) organizationRejection(kind Kind, p *auth.Principal, orgID *int64) *Rejection {
	rej := Reject(kind, "")
	if !g.debug {
		return rej
	}
	if orgID == nil && p.User != nil {
		orgID = p.User.OrganizationID
	}
	rej.Debug = &Debug{
		UserID:         p.ID(),
		Role:           p.Role().String(),
		OrganizationID: orgID,
	}
	return rej
}
