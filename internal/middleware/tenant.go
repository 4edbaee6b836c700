package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/lms-platform/lms-backend/internal/config"
	"github.com/lms-platform/lms-backend/internal/guard"
	"github.com/lms-platform/lms-backend/internal/telemetry"
	"github.com/lms-platform/lms-backend/internal/tenant"
)

// BrandingDefaults converts the configured platform branding.
func BrandingDefaults(cfg config.BrandingConfig) tenant.Branding {
	return tenant.Branding{
		Name:           cfg.Name,
		Logo:           cfg.Logo,
		Favicon:        cfg.Favicon,
		PrimaryColor:   cfg.PrimaryColor,
		SecondaryColor: cfg.SecondaryColor,
		AccentColor:    cfg.AccentColor,
		FooterText:     cfg.FooterText,
	}
}

// TenantContextMiddleware composes the tenant of the request and shares it with
// handlers and the view layer. An empty tenant is not an error; only store
// failures abort.
func TenantContextMiddleware(composer *tenant.Composer, cfg *config.Config) gin.HandlerFunc {
	defaults := BrandingDefaults(cfg.Tenancy.Branding)
	param := cfg.Tenancy.OrgQueryParam

	return func(c *gin.Context) {
		req := tenant.Request{
			Host:      c.Request.Host,
			Principal: GetPrincipal(c),
		}
		if param != "" {
			req.OrgParam = c.Query(param)
		}

		tc, err := composer.Resolve(c.Request.Context(), req)
		if err != nil {
			AbortWithRejection(c, guard.Internal("resolve tenant", err))
			return
		}
		telemetry.TenantResolutionsTotal.WithLabelValues(string(tc.Source)).Inc()

		c.Set(TenantContextKey, tc)
		c.Set(TenantSourceKey, string(tc.Source))
		if tc.Organization != nil {
			c.Set(OrganizationKey, tc.Organization)
		}
		tenant.Publish(viewSink{c: c}, tc, defaults)

		c.Next()
	}
}
