// Package repositories implements the data access layer for the LMS backend.
// Each repository type encapsulates the queries for one table family; handlers and
// middleware never issue SQL directly.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lms-platform/lms-backend/internal/db/models"
)

// UserRepository handles user database operations
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetUserByID retrieves a user by ID together with the id of the organization
// the user owns, if any.
func (r *UserRepository) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	query := `
		SELECT u.id, u.name, u.email, u.role, u.organization_id, o.id,
		       u.created_at, u.updated_at
		FROM users u
		LEFT JOIN organizations o ON o.owner_user_id = u.id
		WHERE u.id = $1
		ORDER BY o.id
		LIMIT 1
	`

	user := &models.User{}
	var role string
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&role,
		&user.OrganizationID,
		&user.OwnedOrganizationID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.Role = models.ParseRole(role)
	return user, nil
}
