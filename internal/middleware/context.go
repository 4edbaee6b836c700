package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/lms-platform/lms-backend/internal/auth"
	"github.com/lms-platform/lms-backend/internal/db/models"
	"github.com/lms-platform/lms-backend/internal/tenant"
)

// gin.Context keys shared between middleware and handlers.
const (
	PrincipalKey      = "principal"
	UserIDKey         = "user_id"
	OrganizationKey   = "organization"
	TenantSourceKey   = "tenant_source"
	TenantContextKey  = "tenant"
	ScopedOrgIDKey    = "_organization_id"
	ScopedOrgKey      = "_organization"
	GuestPermsKey     = "quality_guest_permissions"
	GuestIndicatorKey = "quality_indicator_access"
	IndicatorFilter   = "quality_indicator_filter"
	viewKeyPrefix     = "view."
)

// GetPrincipal returns the authenticated principal, or nil.
func GetPrincipal(c *gin.Context) *auth.Principal {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*auth.Principal)
	return p
}

// GetTenant returns the tenant context composed for the request.
func GetTenant(c *gin.Context) tenant.Context {
	v, ok := c.Get(TenantContextKey)
	if !ok {
		return tenant.Context{Source: tenant.SourceNone}
	}
	tc, _ := v.(tenant.Context)
	return tc
}

// GetScopedOrganizationID returns the organization id set by the organization guard.
func GetScopedOrganizationID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ScopedOrgIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// GetScopedOrganization returns the approved organization loaded by the guard.
func GetScopedOrganization(c *gin.Context) *models.Organization {
	v, ok := c.Get(ScopedOrgKey)
	if !ok {
		return nil
	}
	org, _ := v.(*models.Organization)
	return org
}

// GetIndicatorFilter returns the indicator ids a quality guest may list.
func GetIndicatorFilter(c *gin.Context) ([]int64, bool) {
	v, ok := c.Get(IndicatorFilter)
	if !ok {
		return nil, false
	}
	ids, ok := v.([]int64)
	return ids, ok
}

// GetView returns a value shared with the view layer.
func GetView(c *gin.Context, key string) (any, bool) {
	return c.Get(viewKeyPrefix + key)
}

// viewSink adapts the gin key bag to tenant.ViewSink.
type viewSink struct {
	c *gin.Context
}

func (s viewSink) Share(key string, value any) {
	s.c.Set(viewKeyPrefix+key, value)
}
