// organization_repository.go implements OrganizationRepository, the read side of the
// organizations table used by tenant resolution and the access guard.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lms-platform/lms-backend/internal/db/models"
)

const organizationColumns = `
	id, slug, custom_domain, owner_user_id,
	organization_name, organization_logo, organization_favicon,
	primary_color, secondary_color, accent_color,
	custom_css, login_background_image, footer_text,
	status, whitelabel_enabled, created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// OrganizationRepository handles database operations for organizations
type OrganizationRepository struct {
	db *sql.DB
}

// NewOrganizationRepository creates a new organization repository
func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func scanOrganization(row rowScanner) (*models.Organization, error) {
	org := &models.Organization{}
	var status string
	err := row.Scan(
		&org.ID,
		&org.Slug,
		&org.CustomDomain,
		&org.OwnerUserID,
		&org.OrganizationName,
		&org.OrganizationLogo,
		&org.OrganizationFavicon,
		&org.PrimaryColor,
		&org.SecondaryColor,
		&org.AccentColor,
		&org.CustomCSS,
		&org.LoginBackgroundImage,
		&org.FooterText,
		&status,
		&org.WhitelabelEnabled,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	org.Status = models.OrganizationStatus(status)
	return org, nil
}

func (r *OrganizationRepository) getOne(ctx context.Context, op, query string, args ...any) (*models.Organization, error) {
	org, err := scanOrganization(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	return org, nil
}

// GetByID retrieves an organization by ID regardless of status
func (r *OrganizationRepository) GetByID(ctx context.Context, id int64) (*models.Organization, error) {
	query := `SELECT ` + organizationColumns + `
		FROM organizations
		WHERE id = $1`

	return r.getOne(ctx, "get organization", query, id)
}

// GetBySlug retrieves an organization by slug regardless of status
func (r *OrganizationRepository) GetBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	query := `SELECT ` + organizationColumns + `
		FROM organizations
		WHERE slug = $1
		ORDER BY id
		LIMIT 1`

	return r.getOne(ctx, "get organization by slug", query, slug)
}

// FindWhitelabelByCustomDomain returns the approved, white-label organization whose
// custom_domain equals domain. Duplicates resolve to the lowest id.
func (r *OrganizationRepository) FindWhitelabelByCustomDomain(ctx context.Context, domain string) (*models.Organization, error) {
	query := `SELECT ` + organizationColumns + `
		FROM organizations
		WHERE custom_domain = $1
		  AND whitelabel_enabled = TRUE
		  AND status = 'approved'
		ORDER BY id
		LIMIT 1`

	return r.getOne(ctx, "find organization by custom domain", query, domain)
}

// FindWhitelabelBySubdomain returns the approved, white-label organization whose
// custom_domain or slug equals label. Duplicates resolve to the lowest id.
func (r *OrganizationRepository) FindWhitelabelBySubdomain(ctx context.Context, label string) (*models.Organization, error) {
	query := `SELECT ` + organizationColumns + `
		FROM organizations
		WHERE (custom_domain = $1 OR slug = $1)
		  AND whitelabel_enabled = TRUE
		  AND status = 'approved'
		ORDER BY id
		LIMIT 1`

	return r.getOne(ctx, "find organization by subdomain", query, label)
}

// ListApproved returns approved organizations ordered by id, for super-admin listings.
func (r *OrganizationRepository) ListApproved(ctx context.Context, limit, offset int) ([]*models.Organization, error) {
	query := `SELECT ` + organizationColumns + `
		FROM organizations
		WHERE status = 'approved'
		ORDER BY id
		LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	orgs := make([]*models.Organization, 0)
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate organizations: %w", err)
	}
	return orgs, nil
}
