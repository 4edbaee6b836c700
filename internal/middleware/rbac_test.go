package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lms-platform/lms-backend/internal/auth"
	"github.com/lms-platform/lms-backend/internal/db/models"
	"github.com/lms-platform/lms-backend/internal/guard"
)

// fakeStores implements every guard store over in-memory maps.
type fakeStores struct {
	orgs        map[int64]*models.Organization
	roles       map[[2]int64][]*models.OrganizationRole
	superAdmins map[int64][]*models.SuperAdminRoleAssignment
	invitations map[int64]*models.QualityGuestInvitation
	err         error
}

func (f *fakeStores) GetByID(_ context.Context, id int64) (*models.Organization, error) {
	return f.orgs[id], f.err
}

func (f *fakeStores) ListAssignedRoles(_ context.Context, userID, orgID int64) ([]*models.OrganizationRole, error) {
	return f.roles[[2]int64{userID, orgID}], f.err
}

func (f *fakeStores) HasRoleInOrganization(_ context.Context, userID, orgID int64) (bool, error) {
	return len(f.roles[[2]int64{userID, orgID}]) > 0, f.err
}

func (f *fakeStores) ListAssignments(_ context.Context, userID int64) ([]*models.SuperAdminRoleAssignment, error) {
	return f.superAdmins[userID], f.err
}

func (f *fakeStores) GetAcceptedInvitation(_ context.Context, userID int64) (*models.QualityGuestInvitation, error) {
	return f.invitations[userID], f.err
}

func newFakeStores() *fakeStores {
	return &fakeStores{
		orgs: map[int64]*models.Organization{
			1: {ID: 1, Slug: "acme", Status: models.OrganizationStatusApproved},
			2: {ID: 2, Slug: "pending", Status: models.OrganizationStatusPending},
			3: {ID: 3, Slug: "other", Status: models.OrganizationStatusApproved},
		},
		roles: map[[2]int64][]*models.OrganizationRole{
			{10, 1}: {{ID: 1, OrganizationID: 1, Name: "manager", Permissions: []string{"roles.view"}}},
			{10, 3}: {{ID: 2, OrganizationID: 3, Name: "viewer", Permissions: []string{"courses.view"}}},
		},
		superAdmins: map[int64][]*models.SuperAdminRoleAssignment{
			50: {{ID: 1, UserID: 50, IsActive: true}},
			51: {{ID: 2, UserID: 51, IsActive: false}},
		},
		invitations: map[int64]*models.QualityGuestInvitation{
			20: {
				ID: 7, UserID: 20, OrganizationID: 1, Status: models.InvitationStatusAccepted,
				Permissions: []string{"view_indicators"}, IndicatorAccess: []int64{100, 101},
			},
		},
	}
}

func newGuard(stores *fakeStores, debug bool) *guard.Guard {
	return guard.New(guard.Stores{
		Organizations: stores,
		Roles:         stores,
		SuperAdmins:   stores,
		Invitations:   stores,
	}, guard.MustCompileAllowlist([]string{
		"/api/user",
		"/api/quality/indicators",
		"/api/quality/indicators/*",
	}), guard.WithDebugErrors(debug), guard.WithClock(func() time.Time {
		return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	}))
}

var testUsers = map[int64]*models.User{
	10: {ID: 10, Role: models.RoleOrganization, OwnedOrganizationID: int64Ptr(1)},
	11: {ID: 11, Role: models.RoleOrganization, OrganizationID: int64Ptr(2)},
	12: {ID: 12, Role: models.RoleOrganization},
	13: {ID: 13, Role: models.RoleLearner, OrganizationID: int64Ptr(1)},
	20: {ID: 20, Role: models.RoleQualityGuest},
	21: {ID: 21, Role: models.RoleQualityGuest},
	50: {ID: 50, Role: models.RoleSuperAdmin},
	51: {ID: 51, Role: models.RoleSuperAdmin},
}

// withUser injects the principal for userID, or none for 0.
func withUser(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if u, ok := testUsers[userID]; ok {
			cp := *u
			setPrincipal(c, auth.NewPrincipal(&cp))
		}
		c.Next()
	}
}

func serveGuard(userID int64, method, path, route string, header map[string]string, chain ...gin.HandlerFunc) (*httptest.ResponseRecorder, *gin.Context) {
	var captured *gin.Context
	r := gin.New()
	r.Use(withUser(userID))
	handlers := append(chain, func(c *gin.Context) {
		captured = c.Copy()
		c.Status(http.StatusOK)
	})
	r.Handle(method, route, handlers...)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w, captured
}

func orgChain(g *guard.Guard, perm auth.Permission) []gin.HandlerFunc {
	chain := []gin.HandlerFunc{
		RequireRole(models.RoleOrganization),
		RequireOrganization(g, "X-Organization-ID"),
		RequireApprovedOrganization(g),
	}
	if perm != "" {
		chain = append(chain, RequireOrgPermission(g, perm))
	}
	return chain
}

func TestOrganizationChain(t *testing.T) {
	stores := newFakeStores()
	g := newGuard(stores, false)

	tests := []struct {
		name     string
		userID   int64
		header   string
		perm     auth.Permission
		wantCode int
		wantErr  string
		wantOrg  int64
	}{
		{"anonymous", 0, "", "", 401, "UNAUTHORIZED", 0},
		{"wrong role", 13, "", "", 403, "FORBIDDEN", 0},
		{"no organization", 12, "", "", 403, "ORGANIZATION_MISSING", 0},
		{"pending organization", 11, "", "", 403, "ORGANIZATION_INACTIVE", 0},
		{"owned organization", 10, "", "", 200, "", 1},
		{"permission granted", 10, "", auth.PermissionRolesView, 200, "", 1},
		{"permission denied", 10, "", auth.PermissionRolesManage, 403, "PERMISSION_DENIED", 0},
		{"header selects assigned org", 10, "3", auth.PermissionCoursesView, 200, "", 3},
		{"header permission checked in selected org", 10, "3", auth.PermissionRolesView, 403, "PERMISSION_DENIED", 0},
		{"header for foreign org", 11, "3", "", 403, "PERMISSION_DENIED", 0},
		{"malformed header", 10, "abc", "", 403, "PERMISSION_DENIED", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hdr := map[string]string{}
			if tt.header != "" {
				hdr["X-Organization-ID"] = tt.header
			}
			w, c := serveGuard(tt.userID, http.MethodGet, "/api/organization/profile", "/api/organization/profile", hdr, orgChain(g, tt.perm)...)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantCode, w.Body.String())
			}
			if tt.wantErr != "" {
				if body := decodeError(t, w); body.Error.Code != tt.wantErr {
					t.Errorf("code = %q, want %q", body.Error.Code, tt.wantErr)
				}
				return
			}
			if id, ok := GetScopedOrganizationID(c); !ok || id != tt.wantOrg {
				t.Errorf("_organization_id = %d (%v), want %d", id, ok, tt.wantOrg)
			}
			if org := GetScopedOrganization(c); org == nil || org.ID != tt.wantOrg {
				t.Errorf("scoped organization = %+v", org)
			}
		})
	}
}

func TestOrganizationChain_MissingOrganizationIs404(t *testing.T) {
	stores := newFakeStores()
	delete(stores.orgs, 1)
	w, _ := serveGuard(10, http.MethodGet, "/p", "/p", nil, orgChain(newGuard(stores, false), "")...)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if body := decodeError(t, w); body.Error.Code != "ORGANIZATION_NOT_FOUND" {
		t.Errorf("code = %q", body.Error.Code)
	}
}

func TestOrganizationChain_DebugPayload(t *testing.T) {
	for _, debug := range []bool{false, true} {
		w, _ := serveGuard(12, http.MethodGet, "/p", "/p", nil, orgChain(newGuard(newFakeStores(), debug), "")...)
		body := decodeError(t, w)
		if body.Error.Message != "User is not associated with any organization." {
			t.Errorf("message = %q", body.Error.Message)
		}
		if (body.Error.Debug != nil) != debug {
			t.Errorf("debug=%v: payload = %+v", debug, body.Error.Debug)
		}
		if debug && (body.Error.Debug.UserID != 12 || body.Error.Debug.Role != "organization") {
			t.Errorf("debug payload = %+v", body.Error.Debug)
		}
	}
}

func TestOrganizationChain_StoreErrorIs500(t *testing.T) {
	stores := newFakeStores()
	stores.err = errors.New("db down")
	w, _ := serveGuard(10, http.MethodGet, "/p", "/p", nil, orgChain(newGuard(stores, false), "")...)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if body := decodeError(t, w); body.Error.Message != "Internal server error" {
		t.Errorf("message leaked internals: %q", body.Error.Message)
	}
}

func qualityChain(g *guard.Guard, extra ...gin.HandlerFunc) []gin.HandlerFunc {
	return append([]gin.HandlerFunc{QualityGuestAccess(g), QualityIndicatorAccess("id")}, extra...)
}

func TestQualityGuestChain(t *testing.T) {
	g := newGuard(newFakeStores(), false)

	tests := []struct {
		name     string
		userID   int64
		route    string
		path     string
		wantCode int
		wantErr  string
	}{
		{"allowed indicator", 20, "/api/quality/indicators/:id", "/api/quality/indicators/101", 200, ""},
		{"indicator out of scope", 20, "/api/quality/indicators/:id", "/api/quality/indicators/999", 403, "RESOURCE_OUT_OF_SCOPE"},
		{"non numeric indicator", 20, "/api/quality/indicators/:id", "/api/quality/indicators/abc", 403, "RESOURCE_OUT_OF_SCOPE"},
		{"list route", 20, "/api/quality/indicators", "/api/quality/indicators", 200, ""},
		{"route not allowlisted", 20, "/api/quality/settings", "/api/quality/settings", 403, "ROUTE_NOT_ALLOWED"},
		{"no invitation", 21, "/api/quality/indicators", "/api/quality/indicators", 403, "INVITATION_INVALID"},
		{"not a guest", 13, "/api/quality/indicators", "/api/quality/indicators", 403, "FORBIDDEN"},
		{"anonymous", 0, "/api/quality/indicators", "/api/quality/indicators", 401, "UNAUTHORIZED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, c := serveGuard(tt.userID, http.MethodGet, tt.path, tt.route, nil, qualityChain(g)...)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantCode, w.Body.String())
			}
			if tt.wantErr != "" {
				if body := decodeError(t, w); body.Error.Code != tt.wantErr {
					t.Errorf("code = %q, want %q", body.Error.Code, tt.wantErr)
				}
				return
			}
			if v, _ := c.Get(GuestIndicatorKey); len(v.([]int64)) != 2 {
				t.Errorf("quality_indicator_access = %v", v)
			}
			if v, _ := c.Get(GuestPermsKey); len(v.([]string)) != 1 {
				t.Errorf("quality_guest_permissions = %v", v)
			}
			if p := GetPrincipal(c); p.GuestGrant() == nil || p.GuestGrant().InvitationID != 7 {
				t.Errorf("principal grant = %+v", p.GuestGrant())
			}
			if id, _ := GetScopedOrganizationID(c); id != 1 {
				t.Errorf("_organization_id = %d, want 1", id)
			}
		})
	}
}

func TestQualityIndicatorAccess_ListSetsFilter(t *testing.T) {
	g := newGuard(newFakeStores(), false)
	_, c := serveGuard(20, http.MethodGet, "/api/quality/indicators", "/api/quality/indicators", nil, qualityChain(g)...)
	ids, ok := GetIndicatorFilter(c)
	if !ok || len(ids) != 2 || ids[0] != 100 || ids[1] != 101 {
		t.Errorf("filter = %v (%v)", ids, ok)
	}
}

func TestRequireGuestPermission(t *testing.T) {
	g := newGuard(newFakeStores(), false)

	w, _ := serveGuard(20, http.MethodGet, "/api/quality/indicators", "/api/quality/indicators", nil,
		qualityChain(g, RequireGuestPermission(auth.PermissionGuestViewIndicators))...)
	if w.Code != http.StatusOK {
		t.Errorf("granted permission: status = %d", w.Code)
	}

	w, _ = serveGuard(20, http.MethodGet, "/api/quality/indicators", "/api/quality/indicators", nil,
		qualityChain(g, RequireGuestPermission(auth.PermissionGuestExportReports))...)
	if w.Code != http.StatusForbidden {
		t.Errorf("missing permission: status = %d", w.Code)
	}
}

func TestSuperAdminAuth(t *testing.T) {
	g := newGuard(newFakeStores(), false)

	tests := []struct {
		userID   int64
		wantCode int
	}{
		{50, http.StatusOK},
		{51, http.StatusForbidden},
		{10, http.StatusForbidden},
		{0, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		w, _ := serveGuard(tt.userID, http.MethodGet, "/api/super-admin/organizations/1", "/api/super-admin/organizations/:id", nil, SuperAdminAuth(g))
		if w.Code != tt.wantCode {
			t.Errorf("user %d: status = %d, want %d", tt.userID, w.Code, tt.wantCode)
		}
	}
}

func TestRequireAuthenticated(t *testing.T) {
	if w, _ := serveGuard(0, http.MethodGet, "/api/user", "/api/user", nil, RequireAuthenticated()); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: status = %d", w.Code)
	}
	if w, _ := serveGuard(13, http.MethodGet, "/api/user", "/api/user", nil, RequireAuthenticated()); w.Code != http.StatusOK {
		t.Errorf("learner: status = %d", w.Code)
	}
}
