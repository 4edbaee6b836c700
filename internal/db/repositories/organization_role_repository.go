// organization_role_repository.go implements OrganizationRoleRepository, which reads the
// organization-scoped roles assigned to a user and their permission sets.
package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lms-platform/lms-backend/internal/db/models"
)

// OrganizationRoleRepository handles database operations for organization roles
type OrganizationRoleRepository struct {
	db *sqlx.DB
}

// NewOrganizationRoleRepository creates a new organization role repository
func NewOrganizationRoleRepository(db *sqlx.DB) *OrganizationRoleRepository {
	return &OrganizationRoleRepository{db: db}
}

type organizationRoleRow struct {
	ID             int64     `db:"id"`
	OrganizationID int64     `db:"organization_id"`
	Name           string    `db:"name"`
	Permissions    []byte    `db:"permissions"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (row organizationRoleRow) toModel() (*models.OrganizationRole, error) {
	role := &models.OrganizationRole{
		ID:             row.ID,
		OrganizationID: row.OrganizationID,
		Name:           row.Name,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
	if len(row.Permissions) > 0 {
		if err := json.Unmarshal(row.Permissions, &role.Permissions); err != nil {
			return nil, fmt.Errorf("failed to decode permissions of role %d: %w", row.ID, err)
		}
	}
	return role, nil
}

// ListAssignedRoles returns the roles held by userID inside orgID, ordered by id.
func (r *OrganizationRoleRepository) ListAssignedRoles(ctx context.Context, userID, orgID int64) ([]*models.OrganizationRole, error) {
	query := `SELECT r.id, r.organization_id, r.name, r.permissions, r.created_at, r.updated_at
			  FROM organization_roles r
			  JOIN organization_role_user ru ON ru.organization_role_id = r.id
			  WHERE ru.user_id = $1 AND r.organization_id = $2
			  ORDER BY r.id`

	var rows []organizationRoleRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, orgID); err != nil {
		return nil, fmt.Errorf("failed to list assigned roles: %w", err)
	}

	roles := make([]*models.OrganizationRole, 0, len(rows))
	for _, row := range rows {
		role, err := row.toModel()
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, nil
}

// HasRoleInOrganization reports whether userID holds any role inside orgID.
func (r *OrganizationRoleRepository) HasRoleInOrganization(ctx context.Context, userID, orgID int64) (bool, error) {
	query := `SELECT EXISTS (
				SELECT 1
				FROM organization_role_user ru
				JOIN organization_roles r ON r.id = ru.organization_role_id
				WHERE ru.user_id = $1 AND r.organization_id = $2
			  )`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID, orgID); err != nil {
		return false, fmt.Errorf("failed to check organization role membership: %w", err)
	}
	return exists, nil
}
