// Package api wires together all HTTP routes for the LMS backend.
//
// Route grouping:
//   - /health, /ready and /version sit outside the tenant pipeline.
//   - Everything under /api/ runs optional authentication followed by tenant
//     resolution, so handlers always see a principal (possibly nil) and a tenant
//     context (possibly empty).
//   - Each route family then adds its own guard chain: organization accounts
//     are scoped to an approved organization, quality guests are limited to the
//     configured allowlist and super admins need an effective role assignment.
package api

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"

	"github.com/lms-platform/lms-backend/internal/api/admin"
	"github.com/lms-platform/lms-backend/internal/api/organization"
	"github.com/lms-platform/lms-backend/internal/api/public"
	"github.com/lms-platform/lms-backend/internal/api/quality"
	"github.com/lms-platform/lms-backend/internal/auth"
	"github.com/lms-platform/lms-backend/internal/config"
	"github.com/lms-platform/lms-backend/internal/db"
	"github.com/lms-platform/lms-backend/internal/db/models"
	"github.com/lms-platform/lms-backend/internal/db/repositories"
	"github.com/lms-platform/lms-backend/internal/guard"
	"github.com/lms-platform/lms-backend/internal/middleware"
	"github.com/lms-platform/lms-backend/internal/tenant"
)

// Version is the API version reported by /version. Overridden at build time.
var Version = "0.1.0"

// BackgroundServices holds references to background resources that must be
// stopped during graceful shutdown. The caller (cmd/server) is responsible for
// calling Shutdown() when the process receives a termination signal.
type BackgroundServices struct {
	rateLimiters []*middleware.RateLimiter
}

// Shutdown stops all background goroutines. It should be called after the HTTP
// server has been shut down so that in-flight requests are drained first.
func (bg *BackgroundServices) Shutdown() {
	slog.Info("stopping background services")
	for _, rl := range bg.rateLimiters {
		rl.Stop()
	}
	slog.Info("all background services stopped")
}

// NewRouter creates and configures the Gin router. rdb may be nil when Redis is
// disabled; the tenant cache and rate limiter then fall back to process memory.
func NewRouter(cfg *config.Config, sqlDB *sql.DB, rdb *redis.Client) (*gin.Engine, *BackgroundServices) {
	router := gin.New()
	bg := &BackgroundServices{}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(sqlDB)
	orgRepo := repositories.NewOrganizationRepository(sqlDB)

	sqlxDB := db.Wrap(sqlDB)
	roleRepo := repositories.NewOrganizationRoleRepository(sqlxDB)
	superAdminRepo := repositories.NewSuperAdminRepository(sqlxDB)
	guestRepo := repositories.NewQualityGuestRepository(sqlxDB)

	// Tenant resolution
	domainOpts := []tenant.DomainOption{
		tenant.WithReservedSubdomains(cfg.Tenancy.ReservedSubdomains...),
	}
	if cache := newTenantCache(cfg, rdb); cache != nil {
		domainOpts = append(domainOpts, tenant.WithCache(cache,
			cfg.Tenancy.Cache.KeyPrefix, cfg.Tenancy.Cache.TTL, cfg.Tenancy.Cache.NegativeTTL))
	}
	composer := tenant.NewComposer(
		tenant.NewSessionResolver(orgRepo),
		tenant.NewDomainResolver(orgRepo, domainOpts...),
	)

	// Access guard
	g := guard.New(guard.Stores{
		Organizations: orgRepo,
		Roles:         roleRepo,
		SuperAdmins:   superAdminRepo,
		Invitations:   guestRepo,
	}, guard.MustCompileAllowlist(cfg.Tenancy.QualityGuest.AllowedRoutes),
		guard.WithDebugErrors(cfg.Tenancy.DebugErrors),
	)

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.SecurityHeadersMiddleware(middleware.SecurityHeadersConfigFrom(cfg)))

	router.GET("/health", healthCheckHandler(sqlDB))
	router.GET("/ready", readinessHandler(sqlDB, rdb))
	router.GET("/version", versionHandler())

	apiGroup := router.Group("/api")
	if limiter := newRateLimiter(cfg, rdb, bg); limiter != nil {
		apiGroup.Use(middleware.RateLimitMiddleware(limiter))
	}
	apiGroup.Use(middleware.OptionalAuthMiddleware(cfg, userRepo))
	apiGroup.Use(middleware.TenantContextMiddleware(composer, cfg))

	branding := middleware.BrandingDefaults(cfg.Tenancy.Branding)

	// Tenant and current user
	tenantHandlers := public.NewTenantHandlers(branding)
	apiGroup.GET("/tenant", tenantHandlers.GetTenantHandler())
	apiGroup.GET("/user",
		middleware.RequireAuthenticated(),
		loadGuestGrant(g),
		tenantHandlers.CurrentUserHandler(),
	)

	// Organization accounts
	orgHandlers := organization.NewHandlers(roleRepo, branding)
	orgGroup := apiGroup.Group("/organization")
	orgGroup.Use(middleware.RequireRole(models.RoleOrganization))
	orgGroup.Use(middleware.RequireOrganization(g, cfg.Tenancy.OrganizationHeader))
	orgGroup.Use(middleware.RequireApprovedOrganization(g))
	{
		orgGroup.GET("/profile", orgHandlers.ProfileHandler())
		orgGroup.GET("/roles",
			middleware.RequireOrgPermission(g, auth.PermissionRolesView),
			orgHandlers.RolesHandler(),
		)
	}

	// Quality guests
	qualityHandlers := quality.NewHandlers()
	qualityGroup := apiGroup.Group("/quality")
	qualityGroup.Use(middleware.RequireRole(models.RoleQualityGuest))
	qualityGroup.Use(middleware.QualityGuestAccess(g))
	{
		qualityGroup.GET("/dashboard/stats", qualityHandlers.DashboardStatsHandler())
		qualityGroup.GET("/indicators",
			middleware.RequireGuestPermission(auth.PermissionGuestViewIndicators),
			middleware.QualityIndicatorAccess("id"),
			qualityHandlers.ListIndicatorsHandler(),
		)
		qualityGroup.GET("/indicators/:id",
			middleware.RequireGuestPermission(auth.PermissionGuestViewIndicators),
			middleware.QualityIndicatorAccess("id"),
			qualityHandlers.GetIndicatorHandler(),
		)
	}

	// Super admins
	superAdminHandlers := admin.NewOrganizationHandlers(orgRepo)
	superAdminGroup := apiGroup.Group("/super-admin")
	superAdminGroup.Use(middleware.SuperAdminAuth(g))
	{
		superAdminGroup.GET("/organizations", superAdminHandlers.ListOrganizationsHandler())
		superAdminGroup.GET("/organizations/:id", superAdminHandlers.GetOrganizationHandler())
	}

	return router, bg
}

// newTenantCache picks the tenant lookup cache: Redis when a client is
// available, otherwise a bounded in-process map.
func newTenantCache(cfg *config.Config, rdb *redis.Client) tenant.Cache {
	if !cfg.Tenancy.Cache.Enabled {
		return nil
	}
	if rdb != nil {
		slog.Info("tenant cache backend", "backend", "redis")
		return tenant.NewRedisCache(rdb)
	}
	slog.Info("tenant cache backend", "backend", "memory")
	return tenant.NewMemoryCache(0)
}

// newRateLimiter builds the configured limiter. Memory limiters are registered
// with bg so their cleanup goroutine stops on shutdown.
func newRateLimiter(cfg *config.Config, rdb *redis.Client, bg *BackgroundServices) middleware.Limiter {
	rl := cfg.Security.RateLimiting
	if !rl.Enabled {
		return nil
	}
	limitCfg := middleware.RateLimitConfigFrom(rl)

	if rl.Backend == "redis" {
		if rdb != nil {
			return middleware.NewRedisRateLimiter(redis_rate.NewLimiter(rdb), limitCfg, "lms:ratelimit:")
		}
		slog.Warn("redis rate limiting requested without a redis client, using memory backend")
	}

	limiter := middleware.NewRateLimiter(limitCfg)
	bg.rateLimiters = append(bg.rateLimiters, limiter)
	return limiter
}

// loadGuestGrant attaches the invitation grant for quality guests on shared
// routes. Other principals pass through untouched.
func loadGuestGrant(g *guard.Guard) gin.HandlerFunc {
	guestAccess := middleware.QualityGuestAccess(g)
	return func(c *gin.Context) {
		if middleware.GetPrincipal(c).IsQualityGuest() {
			guestAccess(c)
			return
		}
		c.Next()
	}
}

// @Summary      Health check
// @Description  Returns the health status of the service, including database connectivity.
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status: healthy, time: RFC3339 timestamp"
// @Failure      503  {object}  map[string]interface{}  "status: unhealthy, error: database connection failed"
// @Router       /health [get]
// healthCheckHandler returns the health status of the service
func healthCheckHandler(sqlDB *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := sqlDB.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// redisPinger is the part of the Redis client the readiness check uses.
type redisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// @Summary      Readiness check
// @Description  Returns whether the service is ready to accept traffic. Checks database and, when configured, Redis connectivity.
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "ready: true, time: RFC3339 timestamp"
// @Failure      503  {object}  map[string]interface{}  "ready: false, error: database not ready"
// @Router       /ready [get]
// readinessHandler returns the readiness status of the service.
// Unlike the liveness check (/health), this also checks Redis so that a
// readiness gate fails when tenant caching or rate limiting would error.
func readinessHandler(sqlDB *sql.DB, rdb *redis.Client) gin.HandlerFunc {
	var pinger redisPinger
	if rdb != nil {
		pinger = rdb
	}
	return readiness(sqlDB, pinger)
}

func readiness(sqlDB *sql.DB, pinger redisPinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := gin.H{}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := sqlDB.PingContext(ctx); err != nil {
			checks["database"] = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"ready":  false,
				"checks": checks,
				"error":  "database not ready",
			})
			return
		}
		checks["database"] = "healthy"

		if pinger != nil {
			if err := pinger.Ping(ctx).Err(); err != nil {
				checks["redis"] = "unhealthy"
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"ready":  false,
					"checks": checks,
					"error":  "redis not ready",
				})
				return
			}
			checks["redis"] = "healthy"
		}

		c.JSON(http.StatusOK, gin.H{
			"ready":  true,
			"checks": checks,
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// @Summary      API version
// @Description  Returns the current service and API version.
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "version, api_version"
// @Router       /version [get]
// versionHandler returns the API version
func versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":     Version,
			"api_version": "v1",
		})
	}
}
