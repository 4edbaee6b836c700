// security.go provides Gin middleware that sets protective HTTP response headers.
package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lms-platform/lms-backend/internal/config"
)

// SecurityHeadersConfig holds configuration for security headers
type SecurityHeadersConfig struct {
	// EnableHSTS sends Strict-Transport-Security; only meaningful behind TLS
	EnableHSTS bool
	// HSTSMaxAge is the max-age value for HSTS in seconds
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	// FrameOptionsValue is the X-Frame-Options value; empty disables the header
	FrameOptionsValue     string
	ContentSecurityPolicy string
	ReferrerPolicy        string
	PermissionsPolicy     string
}

// APISecurityHeadersConfig returns headers suited to a JSON API.
func APISecurityHeadersConfig() SecurityHeadersConfig {
	return SecurityHeadersConfig{
		EnableHSTS:            true,
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,
		FrameOptionsValue:     "DENY",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		ReferrerPolicy:        "no-referrer",
	}
}

// SecurityHeadersConfigFrom derives header settings from the server config.
// White-label tenants serve their own domains, so HSTS omits includeSubDomains
// and is only sent when this server terminates TLS.
func SecurityHeadersConfigFrom(cfg *config.Config) SecurityHeadersConfig {
	sc := APISecurityHeadersConfig()
	sc.EnableHSTS = cfg.Security.TLS.Enabled
	sc.HSTSIncludeSubdomains = false
	return sc
}

// SecurityHeadersMiddleware adds security headers to all responses
func SecurityHeadersMiddleware(config SecurityHeadersConfig) gin.HandlerFunc {
	hsts := ""
	if config.EnableHSTS {
		hsts = "max-age=" + strconv.Itoa(config.HSTSMaxAge)
		if config.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
	}

	return func(c *gin.Context) {
		if hsts != "" {
			c.Header("Strict-Transport-Security", hsts)
		}
		if config.FrameOptionsValue != "" {
			c.Header("X-Frame-Options", config.FrameOptionsValue)
		}
		c.Header("X-Content-Type-Options", "nosniff")
		if config.ContentSecurityPolicy != "" {
			c.Header("Content-Security-Policy", config.ContentSecurityPolicy)
		}
		if config.ReferrerPolicy != "" {
			c.Header("Referrer-Policy", config.ReferrerPolicy)
		}
		if config.PermissionsPolicy != "" {
			c.Header("Permissions-Policy", config.PermissionsPolicy)
		}
		c.Header("Cross-Origin-Resource-Policy", "same-origin")

		c.Next()
	}
}
