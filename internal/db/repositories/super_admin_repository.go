// super_admin_repository.go implements SuperAdminRepository, which reads super-admin
// role assignments for the super-admin access check.
package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/lms-platform/lms-backend/internal/db/models"
)

// SuperAdminRepository handles database operations for super-admin role assignments
type SuperAdminRepository struct {
	db *sqlx.DB
}

// NewSuperAdminRepository creates a new super-admin repository
func NewSuperAdminRepository(db *sqlx.DB) *SuperAdminRepository {
	return &SuperAdminRepository{db: db}
}

// ListAssignments returns every assignment of userID, active or not, newest first.
// Expiry is evaluated by the caller so the check stays clock-injectable.
func (r *SuperAdminRepository) ListAssignments(ctx context.Context, userID int64) ([]*models.SuperAdminRoleAssignment, error) {
	query := `SELECT id, user_id, role_name, is_active, expires_at, created_at
			  FROM super_admin_role_assignments
			  WHERE user_id = $1
			  ORDER BY created_at DESC, id DESC`

	assignments := make([]*models.SuperAdminRoleAssignment, 0)
	if err := r.db.SelectContext(ctx, &assignments, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list super admin assignments: %w", err)
	}
	return assignments, nil
}
