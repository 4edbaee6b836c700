package tenant

import (
	"context"

	"github.com/lms-platform/lms-backend/internal/auth"
	"github.com/lms-platform/lms-backend/internal/db/models"
)

// OrganizationGetter loads an organization by id.
type OrganizationGetter interface {
	GetByID(ctx context.Context, id int64) (*models.Organization, error)
}

// SessionResolver derives the organization from the authenticated principal:
// the owned organization first, then the one the principal belongs to.
type SessionResolver struct {
	orgs OrganizationGetter
}

// NewSessionResolver creates a session identity resolver
func NewSessionResolver(orgs OrganizationGetter) *SessionResolver {
	return &SessionResolver{orgs: orgs}
}

// Resolve returns the principal's organization without filtering on status.
func (r *SessionResolver) Resolve(ctx context.Context, p *auth.Principal) (*models.Organization, Source, error) {
	if p == nil || p.User == nil {
		return nil, SourceNone, nil
	}

	if id := p.User.OwnedOrganizationID; id != nil {
		org, err := r.orgs.GetByID(ctx, *id)
		if err != nil {
			return nil, SourceNone, err
		}
		if org != nil {
			return org, SourceSessionOwned, nil
		}
	}

	if id := p.User.OrganizationID; id != nil {
		org, err := r.orgs.GetByID(ctx, *id)
		if err != nil {
			return nil, SourceNone, err
		}
		if org != nil {
			return org, SourceSessionBelongsTo, nil
		}
	}

	return nil, SourceNone, nil
}
