// Package admin implements the super-admin endpoints. Every route in this package
// is mounted behind middleware.SuperAdminAuth.
package admin

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lms-platform/lms-backend/internal/db/models"
	"github.com/lms-platform/lms-backend/internal/guard"
	"github.com/lms-platform/lms-backend/internal/middleware"
)

// OrganizationReader is the organization store used by super admins.
type OrganizationReader interface {
	GetByID(ctx context.Context, id int64) (*models.Organization, error)
	ListApproved(ctx context.Context, limit, offset int) ([]*models.Organization, error)
}

// OrganizationHandlers serves organization lookups for super admins
type OrganizationHandlers struct {
	orgs OrganizationReader
}

// NewOrganizationHandlers creates a new OrganizationHandlers instance
func NewOrganizationHandlers(orgs OrganizationReader) *OrganizationHandlers {
	return &OrganizationHandlers{orgs: orgs}
}

// @Summary      List approved organizations
// @Tags         SuperAdmin
// @Security     Bearer
// @Produce      json
// @Param        page      query  int  false  "Page number (default 1)"
// @Param        per_page  query  int  false  "Items per page, max 100 (default 20)"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  middleware.ErrorResponse
// @Router       /api/super-admin/organizations [get]
// ListOrganizationsHandler lists approved organizations
func (h *OrganizationHandlers) ListOrganizationsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
		if page < 1 {
			page = 1
		}
		if perPage < 1 || perPage > 100 {
			perPage = 20
		}

		orgs, err := h.orgs.ListApproved(c.Request.Context(), perPage, (page-1)*perPage)
		if err != nil {
			middleware.AbortWithRejection(c, guard.Internal("list organizations", err))
			return
		}

		middleware.Success(c, gin.H{
			"organizations": orgs,
			"pagination": gin.H{
				"page":     page,
				"per_page": perPage,
			},
		})
	}
}

// @Summary      Get organization
// @Description  Returns any organization regardless of status.
// @Tags         SuperAdmin
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "Organization ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  middleware.ErrorResponse
// @Router       /api/super-admin/organizations/{id} [get]
// GetOrganizationHandler returns one organization by id
func (h *OrganizationHandlers) GetOrganizationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id <= 0 {
			middleware.AbortWithError(c, http.StatusBadRequest, "INVALID_ID", "Organization id must be a positive integer.")
			return
		}

		org, err := h.orgs.GetByID(c.Request.Context(), id)
		if err != nil {
			middleware.AbortWithRejection(c, guard.Internal("get organization", err))
			return
		}
		if org == nil {
			middleware.AbortWithRejection(c, guard.Reject(guard.KindOrganizationNotFound, ""))
			return
		}

		middleware.Success(c, org)
	}
}
