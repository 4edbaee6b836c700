// quality_guest_repository.go implements QualityGuestRepository, which loads the
// invitation scoping a quality guest to permissions and indicator ids.
package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lms-platform/lms-backend/internal/db/models"
)

// QualityGuestRepository handles database operations for quality-guest invitations
type QualityGuestRepository struct {
	db *sqlx.DB
}

// NewQualityGuestRepository creates a new quality-guest repository
func NewQualityGuestRepository(db *sqlx.DB) *QualityGuestRepository {
	return &QualityGuestRepository{db: db}
}

type invitationRow struct {
	ID              int64     `db:"id"`
	UserID          int64     `db:"user_id"`
	OrganizationID  int64     `db:"organization_id"`
	Status          string    `db:"status"`
	Permissions     []byte    `db:"permissions"`
	IndicatorAccess []byte    `db:"indicator_access"`
	CreatedAt       time.Time `db:"created_at"`
}

// GetAcceptedInvitation returns the most recent accepted invitation of userID, or
// nil when the user has none.
func (r *QualityGuestRepository) GetAcceptedInvitation(ctx context.Context, userID int64) (*models.QualityGuestInvitation, error) {
	query := `SELECT id, user_id, organization_id, status, permissions, indicator_access, created_at
			  FROM quality_guest_invitations
			  WHERE user_id = $1 AND status = 'accepted'
			  ORDER BY created_at DESC, id DESC
			  LIMIT 1`

	var row invitationRow
	err := r.db.GetContext(ctx, &row, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quality guest invitation: %w", err)
	}

	inv := &models.QualityGuestInvitation{
		ID:             row.ID,
		UserID:         row.UserID,
		OrganizationID: row.OrganizationID,
		Status:         models.InvitationStatus(row.Status),
		CreatedAt:      row.CreatedAt,
	}
	if len(row.Permissions) > 0 {
		if err := json.Unmarshal(row.Permissions, &inv.Permissions); err != nil {
			return nil, fmt.Errorf("failed to decode invitation permissions: %w", err)
		}
	}
	if len(row.IndicatorAccess) > 0 {
		if err := json.Unmarshal(row.IndicatorAccess, &inv.IndicatorAccess); err != nil {
			return nil, fmt.Errorf("failed to decode invitation indicator access: %w", err)
		}
	}
	return inv, nil
}
