// Package public implements endpoints that run after tenant resolution without
// an organization scope: the tenant branding lookup and the current-user echo.
package public

import (
	"github.com/gin-gonic/gin"

	"github.com/lms-platform/lms-backend/internal/guard"
	"github.com/lms-platform/lms-backend/internal/middleware"
	"github.com/lms-platform/lms-backend/internal/tenant"
)

// TenantHandlers serves tenant lookups for the current request
type TenantHandlers struct {
	branding tenant.Branding
}

// NewTenantHandlers creates tenant handlers with the platform branding defaults
func NewTenantHandlers(defaults tenant.Branding) *TenantHandlers {
	return &TenantHandlers{branding: defaults}
}

// @Summary      Resolved tenant
// @Description  Returns the organization resolved for this request, its branding and how it was resolved.
// @Tags         Tenant
// @Produce      json
// @Param        org  query  string  false  "Explicit organization domain"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/tenant [get]
// GetTenantHandler returns the resolved tenant and its branding
func (h *TenantHandlers) GetTenantHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := middleware.GetTenant(c)
		middleware.Success(c, gin.H{
			"source":   tc.Source,
			"resolved": !tc.Empty(),
			"branding": tenant.BrandingFor(tc.Organization, h.branding),
		})
	}
}

// @Summary      Current user
// @Tags         Tenant
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  middleware.ErrorResponse
// @Router       /api/user [get]
// CurrentUserHandler echoes the authenticated principal and the resolved tenant
func (h *TenantHandlers) CurrentUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := middleware.GetPrincipal(c)
		if err := guard.CheckAuthenticated(p); err != nil {
			middleware.AbortWithRejection(c, err)
			return
		}

		tc := middleware.GetTenant(c)
		resp := gin.H{
			"user":          p.User,
			"tenant_source": tc.Source,
			"organization":  tc.Organization,
		}
		if grant := p.GuestGrant(); grant != nil {
			resp["quality_guest"] = gin.H{
				"organization_id":  grant.OrganizationID,
				"permissions":      grant.Permissions,
				"indicator_access": grant.IndicatorAccess,
			}
		}
		middleware.Success(c, resp)
	}
}
