// Package quality implements the read-only quality endpoints opened to quality
// guests. Indicator content lives in the course service; these handlers expose
// the guest's scope so the client can fetch only what the invitation covers.
package quality

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lms-platform/lms-backend/internal/auth"
	"github.com/lms-platform/lms-backend/internal/guard"
	"github.com/lms-platform/lms-backend/internal/middleware"
)

// Handlers serves the quality guest endpoints
type Handlers struct{}

// NewHandlers creates quality handlers
func NewHandlers() *Handlers {
	return &Handlers{}
}

// @Summary      Quality dashboard statistics
// @Tags         Quality
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  middleware.ErrorResponse
// @Router       /api/quality/dashboard/stats [get]
// DashboardStatsHandler summarises the guest's invitation scope
func (h *Handlers) DashboardStatsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		grant := middleware.GetPrincipal(c).GuestGrant()
		if grant == nil {
			middleware.AbortWithRejection(c, guard.Reject(guard.KindInvitationInvalid, ""))
			return
		}

		middleware.Success(c, gin.H{
			"organization_id":    grant.OrganizationID,
			"invitation_id":      grant.InvitationID,
			"indicator_count":    len(grant.IndicatorAccess),
			"permissions":        grant.Permissions,
			"can_view_evidence":  grant.HasPermission(auth.PermissionGuestViewEvidence),
			"can_export_reports": grant.HasPermission(auth.PermissionGuestExportReports),
		})
	}
}

// @Summary      List accessible indicators
// @Tags         Quality
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  middleware.ErrorResponse
// @Router       /api/quality/indicators [get]
// ListIndicatorsHandler returns the indicator ids the guest may read
func (h *Handlers) ListIndicatorsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, _ := middleware.GetIndicatorFilter(c)
		if ids == nil {
			ids = []int64{}
		}
		orgID, _ := middleware.GetScopedOrganizationID(c)

		middleware.Success(c, gin.H{
			"organization_id": orgID,
			"indicators":      ids,
			"total":           len(ids),
		})
	}
}

// @Summary      Get indicator
// @Tags         Quality
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "Indicator ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  middleware.ErrorResponse
// @Router       /api/quality/indicators/{id} [get]
// GetIndicatorHandler returns one indicator reference. The id has already been
// checked against the invitation by middleware.QualityIndicatorAccess.
func (h *Handlers) GetIndicatorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
		grant := middleware.GetPrincipal(c).GuestGrant()

		middleware.Success(c, gin.H{
			"id":                id,
			"organization_id":   grant.OrganizationID,
			"can_view_evidence": grant.HasPermission(auth.PermissionGuestViewEvidence),
		})
	}
}
