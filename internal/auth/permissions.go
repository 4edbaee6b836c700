// Package auth - permissions.go defines the permission strings carried by organization
// roles and quality-guest invitations, with helpers for checking role sets.
package auth

import (
	"fmt"
	"sort"

	"github.com/lms-platform/lms-backend/internal/db/models"
)

// Permission represents a capability string
type Permission string

const (
	// Organization role permissions
	PermissionCoursesView        Permission = "courses.view"
	PermissionCoursesManage      Permission = "courses.manage"
	PermissionSessionsManage     Permission = "sessions.manage"
	PermissionCertificatesIssue  Permission = "certificates.issue"
	PermissionMembersManage      Permission = "members.manage"
	PermissionRolesView          Permission = "roles.view"
	PermissionRolesManage        Permission = "roles.manage"
	PermissionQualityManage      Permission = "quality.manage"
	PermissionOrganizationManage Permission = "organization.manage"

	// Quality guest permissions
	PermissionGuestViewDashboard  Permission = "view_dashboard"
	PermissionGuestViewIndicators Permission = "view_indicators"
	PermissionGuestViewEvidence   Permission = "view_evidence"
	PermissionGuestExportReports  Permission = "export_reports"
)

// AllPermissions returns every known permission
func AllPermissions() []Permission {
	return []Permission{
		PermissionCoursesView,
		PermissionCoursesManage,
		PermissionSessionsManage,
		PermissionCertificatesIssue,
		PermissionMembersManage,
		PermissionRolesView,
		PermissionRolesManage,
		PermissionQualityManage,
		PermissionOrganizationManage,
		PermissionGuestViewDashboard,
		PermissionGuestViewIndicators,
		PermissionGuestViewEvidence,
		PermissionGuestExportReports,
	}
}

// ValidatePermissions checks that every entry is a known permission
func ValidatePermissions(perms []string) error {
	valid := make(map[string]bool, len(AllPermissions()))
	for _, p := range AllPermissions() {
		valid[string(p)] = true
	}
	for _, p := range perms {
		if !valid[p] {
			return fmt.Errorf("invalid permission: %s", p)
		}
	}
	return nil
}

func containsPermission(granted []string, perm Permission) bool {
	for _, g := range granted {
		if g == string(perm) {
			return true
		}
	}
	return false
}

// GrantingRole returns the first role in roles that carries perm.
func GrantingRole(roles []*models.OrganizationRole, perm Permission) (*models.OrganizationRole, bool) {
	for _, r := range roles {
		if r != nil && r.Grants(string(perm)) {
			return r, true
		}
	}
	return nil, false
}

// CollectPermissions returns the sorted union of permissions across roles
func CollectPermissions(roles []*models.OrganizationRole) []string {
	set := make(map[string]bool)
	for _, r := range roles {
		if r == nil {
			continue
		}
		for _, p := range r.Permissions {
			set[p] = true
		}
	}
	perms := make([]string, 0, len(set))
	for p := range set {
		perms = append(perms, p)
	}
	sort.Strings(perms)
	return perms
}
