// Package models - quality_guest.go defines invitations granting external quality
// reviewers read access to a subset of an organization's quality indicators.
package models

import "time"

// InvitationStatus is the lifecycle state of a quality-guest invitation.
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusRevoked  InvitationStatus = "revoked"
)

// QualityGuestInvitation scopes a quality guest to permissions and indicator ids
type QualityGuestInvitation struct {
	ID              int64            `db:"id" json:"id"`
	UserID          int64            `db:"user_id" json:"user_id"`
	OrganizationID  int64            `db:"organization_id" json:"organization_id"`
	Status          InvitationStatus `db:"status" json:"status"`
	Permissions     []string         `db:"-" json:"permissions"`
	IndicatorAccess []int64          `db:"-" json:"indicator_access"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
}

// IsAccepted reports whether the invitation currently grants access.
func (i *QualityGuestInvitation) IsAccepted() bool {
	return i != nil && i.Status == InvitationStatusAccepted
}

// CanAccessIndicator reports whether id is within the invitation's indicator scope.
func (i *QualityGuestInvitation) CanAccessIndicator(id int64) bool {
	for _, allowed := range i.IndicatorAccess {
		if allowed == id {
			return true
		}
	}
	return false
}
