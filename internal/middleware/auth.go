// Package middleware provides the Gin middleware of the LMS backend: request
// bookkeeping, authentication, tenant context composition and the access guard.
//
// Ordering is enforced in router.go:
//
//	RequestID → Metrics → Logger → CORS → Security → RateLimit → Auth → TenantContext → Guard → Handler
//
// The tenant context is composed after authentication so the session identity
// can take part, and every guard runs strictly after the tenant context exists.
package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lms-platform/lms-backend/internal/auth"
	"github.com/lms-platform/lms-backend/internal/config"
	"github.com/lms-platform/lms-backend/internal/db/models"
	"github.com/lms-platform/lms-backend/internal/guard"
)

// UserLoader loads the account behind a validated token.
type UserLoader interface {
	GetUserByID(ctx context.Context, userID int64) (*models.User, error)
}

var (
	errMissingToken = errors.New("missing bearer token")
	errUnknownUser  = errors.New("token subject not found")
)

// AuthMiddleware requires a valid bearer token and stores the principal.
func AuthMiddleware(cfg *config.Config, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := authenticate(c, cfg, users)
		switch {
		case err == nil:
		case errors.Is(err, errMissingToken):
			AbortWithRejection(c, guard.Reject(guard.KindUnauthenticated, "Authentication required."))
			return
		case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, errUnknownUser):
			AbortWithRejection(c, guard.Reject(guard.KindUnauthenticated, "Invalid or expired token."))
			return
		default:
			AbortWithRejection(c, guard.Internal("load user", err))
			return
		}

		setPrincipal(c, p)
		c.Next()
	}
}

// OptionalAuthMiddleware stores the principal when a valid token is present and
// continues anonymously otherwise. Store failures still abort with 500.
func OptionalAuthMiddleware(cfg *config.Config, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := authenticate(c, cfg, users)
		if err != nil && !errors.Is(err, errMissingToken) &&
			!errors.Is(err, auth.ErrInvalidToken) && !errors.Is(err, errUnknownUser) {
			AbortWithRejection(c, guard.Internal("load user", err))
			return
		}
		if p != nil {
			setPrincipal(c, p)
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, cfg *config.Config, users UserLoader) (*auth.Principal, error) {
	header := cfg.Auth.TokenHeader
	if header == "" {
		header = "Authorization"
	}
	raw := strings.TrimSpace(c.GetHeader(header))
	if raw == "" {
		return nil, errMissingToken
	}
	token, ok := strings.CutPrefix(raw, "Bearer ")
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errMissingToken
	}

	claims, err := auth.ValidateJWT(token, cfg.Auth.Issuer)
	if err != nil {
		return nil, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, err
	}

	user, err := users.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errUnknownUser
	}
	return auth.NewPrincipal(user), nil
}

func setPrincipal(c *gin.Context, p *auth.Principal) {
	c.Set(PrincipalKey, p)
	c.Set(UserIDKey, p.ID())
}
