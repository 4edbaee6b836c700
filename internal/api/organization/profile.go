// Package organization implements endpoints for organization accounts acting on
// their scoped organization.
package organization

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/lms-platform/lms-backend/internal/auth"
	"github.com/lms-platform/lms-backend/internal/db/models"
	"github.com/lms-platform/lms-backend/internal/guard"
	"github.com/lms-platform/lms-backend/internal/middleware"
	"github.com/lms-platform/lms-backend/internal/tenant"
)

// RoleLister lists the organization roles assigned to a user.
type RoleLister interface {
	ListAssignedRoles(ctx context.Context, userID, orgID int64) ([]*models.OrganizationRole, error)
}

// Handlers serves the organization endpoints
type Handlers struct {
	roles    RoleLister
	branding tenant.Branding
}

// NewHandlers creates organization handlers. defaults fill empty branding fields.
func NewHandlers(roles RoleLister, defaults tenant.Branding) *Handlers {
	return &Handlers{roles: roles, branding: defaults}
}

// @Summary      Organization profile
// @Tags         Organization
// @Security     Bearer
// @Produce      json
// @Param        X-Organization-ID  header  int  false  "Active organization for multi-organization accounts"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  middleware.ErrorResponse
// @Failure      404  {object}  middleware.ErrorResponse
// @Router       /api/organization/profile [get]
// ProfileHandler returns the scoped organization and its effective branding
func (h *Handlers) ProfileHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		org := middleware.GetScopedOrganization(c)
		if org == nil {
			middleware.AbortWithRejection(c, guard.Reject(guard.KindOrganizationMissing, ""))
			return
		}
		middleware.Success(c, gin.H{
			"organization": org,
			"branding":     tenant.BrandingFor(org, h.branding),
		})
	}
}

// @Summary      Assigned organization roles
// @Tags         Organization
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  middleware.ErrorResponse
// @Router       /api/organization/roles [get]
// RolesHandler lists the caller's roles in the scoped organization and their
// combined permissions
func (h *Handlers) RolesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, ok := middleware.GetScopedOrganizationID(c)
		if !ok {
			middleware.AbortWithRejection(c, guard.Reject(guard.KindOrganizationMissing, ""))
			return
		}
		p := middleware.GetPrincipal(c)

		roles, err := h.roles.ListAssignedRoles(c.Request.Context(), p.ID(), orgID)
		if err != nil {
			middleware.AbortWithRejection(c, guard.Internal("list organization roles", err))
			return
		}
		if roles == nil {
			roles = []*models.OrganizationRole{}
		}

		middleware.Success(c, gin.H{
			"organization_id": orgID,
			"roles":           roles,
			"permissions":     auth.CollectPermissions(roles),
		})
	}
}
