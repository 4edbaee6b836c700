// rbac.go wraps the access guard checks as Gin middleware. Every rejection is
// terminal and written through AbortWithRejection.

package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lms-platform/lms-backend/internal/auth"
	"github.com/lms-platform/lms-backend/internal/db/models"
	"github.com/lms-platform/lms-backend/internal/guard"
)

// RequireAuthenticated rejects anonymous requests with 401.
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := guard.CheckAuthenticated(GetPrincipal(c)); err != nil {
			AbortWithRejection(c, err)
			return
		}
		c.Next()
	}
}

// RequireRole admits principals holding one of roles.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := guard.CheckRole(GetPrincipal(c), roles...); err != nil {
			AbortWithRejection(c, err)
			return
		}
		c.Next()
	}
}

// RequireOrganization resolves the organization the request acts on and stores
// it under ScopedOrgIDKey. headerName selects among multiple memberships.
func RequireOrganization(g *guard.Guard, headerName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var header string
		if headerName != "" {
			header = c.GetHeader(headerName)
		}
		orgID, err := g.ResolveOrganizationScope(c.Request.Context(), GetPrincipal(c), header)
		if err != nil {
			AbortWithRejection(c, err)
			return
		}
		c.Set(ScopedOrgIDKey, orgID)
		c.Next()
	}
}

// RequireApprovedOrganization loads the scoped organization and rejects it when
// missing (404) or not approved (403). Must run after RequireOrganization.
func RequireApprovedOrganization(g *guard.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, ok := GetScopedOrganizationID(c)
		if !ok {
			AbortWithRejection(c, guard.Reject(guard.KindOrganizationMissing, ""))
			return
		}
		org, err := g.LoadOrganization(c.Request.Context(), GetPrincipal(c), orgID)
		if err != nil {
			AbortWithRejection(c, err)
			return
		}
		c.Set(ScopedOrgKey, org)
		c.Next()
	}
}

// RequireOrgPermission admits principals whose organization roles grant perm in
// the scoped organization. Must run after RequireOrganization.
func RequireOrgPermission(g *guard.Guard, perm auth.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, ok := GetScopedOrganizationID(c)
		if !ok {
			AbortWithRejection(c, guard.Reject(guard.KindOrganizationMissing, ""))
			return
		}
		if err := g.CheckPermission(c.Request.Context(), GetPrincipal(c), orgID, perm); err != nil {
			AbortWithRejection(c, err)
			return
		}
		c.Next()
	}
}

// QualityGuestAccess admits quality guests with an accepted invitation to
// allowlisted paths, attaching the invitation grant to the principal.
func QualityGuestAccess(g *guard.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := GetPrincipal(c)
		grant, err := g.CheckQualityGuest(c.Request.Context(), p, c.Request.URL.Path)
		if err != nil {
			AbortWithRejection(c, err)
			return
		}
		p.Guest = grant
		c.Set(GuestPermsKey, grant.Permissions)
		c.Set(GuestIndicatorKey, grant.IndicatorAccess)
		c.Set(ScopedOrgIDKey, grant.OrganizationID)
		c.Next()
	}
}

// QualityIndicatorAccess restricts quality guests to their invited indicators.
// Routes carrying the param are checked against the grant; list routes get the
// allowed ids under IndicatorFilter. Must run after QualityGuestAccess.
func QualityIndicatorAccess(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		grant := GetPrincipal(c).GuestGrant()
		raw := c.Param(param)
		if raw == "" {
			if grant == nil {
				AbortWithRejection(c, guard.Reject(guard.KindInvitationInvalid, ""))
				return
			}
			c.Set(IndicatorFilter, append([]int64(nil), grant.IndicatorAccess...))
			c.Next()
			return
		}

		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			AbortWithRejection(c, guard.Reject(guard.KindResourceOutOfScope, "Access denied to this indicator"))
			return
		}
		if err := guard.CheckIndicator(grant, id); err != nil {
			AbortWithRejection(c, err)
			return
		}
		c.Next()
	}
}

// RequireGuestPermission admits quality guests whose invitation grants perm.
func RequireGuestPermission(perm auth.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := guard.CheckGuestPermission(GetPrincipal(c).GuestGrant(), perm); err != nil {
			AbortWithRejection(c, err)
			return
		}
		c.Next()
	}
}

// SuperAdminAuth admits super admins holding an effective role assignment.
func SuperAdminAuth(g *guard.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := g.CheckSuperAdmin(c.Request.Context(), GetPrincipal(c)); err != nil {
			AbortWithRejection(c, err)
			return
		}
		c.Next()
	}
}
