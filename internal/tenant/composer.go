package tenant

import (
	"context"
	"fmt"
	"strings"

	"github.com/lms-platform/lms-backend/internal/auth"
	"github.com/lms-platform/lms-backend/internal/db/models"
)

// Request is the request state the composer reads.
type Request struct {
	Host      string
	OrgParam  string
	Principal *auth.Principal
}

// Context is the resolved tenant of one request. Organization is nil when no
// organization applies.
type Context struct {
	Organization *models.Organization
	Source       Source
}

// Empty reports whether no organization was resolved.
func (c Context) Empty() bool {
	return c.Organization == nil
}

// Composer combines the session and domain resolvers into the request's tenant.
type Composer struct {
	session *SessionResolver
	domain  *DomainResolver
}

// NewComposer creates a tenant context composer
func NewComposer(session *SessionResolver, domain *DomainResolver) *Composer {
	return &Composer{session: session, domain: domain}
}

// Resolve determines the tenant of req:
//  1. the session identity sets the organization;
//  2. a non-empty explicit org parameter naming a white-label custom domain overrides it;
//  3. when nothing is set yet, the host is resolved through custom domains and subdomains.
//
// Absence is not an error. Errors come only from the stores.
func (c *Composer) Resolve(ctx context.Context, req Request) (Context, error) {
	out := Context{Source: SourceNone}

	if req.Principal != nil {
		org, src, err := c.session.Resolve(ctx, req.Principal)
		if err != nil {
			return Context{Source: SourceNone}, fmt.Errorf("session identity lookup: %w", err)
		}
		if org != nil {
			out = Context{Organization: org, Source: src}
		}
	}

	if param := strings.TrimSpace(req.OrgParam); param != "" {
		org, err := c.domain.ByCustomDomain(ctx, param)
		if err != nil {
			return Context{Source: SourceNone}, fmt.Errorf("explicit organization lookup: %w", err)
		}
		if org != nil {
			out = Context{Organization: org, Source: SourceExplicitParam}
		}
	}

	if out.Organization == nil {
		org, src, err := c.domain.Resolve(ctx, req.Host)
		if err != nil {
			return Context{Source: SourceNone}, fmt.Errorf("domain lookup: %w", err)
		}
		if org != nil {
			out = Context{Organization: org, Source: src}
		}
	}

	return out, nil
}
