package organization

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/lms-platform/lms-backend/internal/auth"
	"github.com/lms-platform/lms-backend/internal/db/models"
	"github.com/lms-platform/lms-backend/internal/middleware"
	"github.com/lms-platform/lms-backend/internal/tenant"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeRoles struct {
	roles []*models.OrganizationRole
	err   error
}

func (f fakeRoles) ListAssignedRoles(_ context.Context, _, _ int64) ([]*models.OrganizationRole, error) {
	return f.roles, f.err
}

func strPtr(s string) *string { return &s }

// scoped mimics the organization guard chain by setting the scope keys.
func scoped(org *models.Organization) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.PrincipalKey, auth.NewPrincipal(&models.User{ID: 10, Role: models.RoleOrganization}))
		if org != nil {
			c.Set(middleware.ScopedOrgIDKey, org.ID)
			c.Set(middleware.ScopedOrgKey, org)
		}
		c.Next()
	}
}

func get(r *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestProfileHandler(t *testing.T) {
	org := &models.Organization{ID: 4, Slug: "acme", OrganizationName: strPtr("Acme Academy"), PrimaryColor: strPtr("#ff0000")}
	h := NewHandlers(fakeRoles{}, tenant.Branding{Name: "LMS", PrimaryColor: "#000000", AccentColor: "#00ff00"})

	r := gin.New()
	r.GET("/profile", scoped(org), h.ProfileHandler())

	w, body := get(r, "/profile")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	branding := body["data"].(map[string]interface{})["branding"].(map[string]interface{})
	if branding["name"] != "Acme Academy" {
		t.Errorf("name = %v", branding["name"])
	}
	if branding["primary_color"] != "#ff0000" {
		t.Errorf("primary_color = %v", branding["primary_color"])
	}
	if branding["accent_color"] != "#00ff00" {
		t.Errorf("accent_color = %v, want default", branding["accent_color"])
	}
}

func TestProfileHandler_NoScope(t *testing.T) {
	h := NewHandlers(fakeRoles{}, tenant.Branding{})
	r := gin.New()
	r.GET("/profile", scoped(nil), h.ProfileHandler())

	w, _ := get(r, "/profile")
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestRolesHandler(t *testing.T) {
	roles := []*models.OrganizationRole{
		{ID: 1, Name: "Manager", Permissions: []string{"roles.view", "courses.view"}},
		{ID: 2, Name: "Trainer", Permissions: []string{"courses.view", "sessions.manage"}},
	}
	h := NewHandlers(fakeRoles{roles: roles}, tenant.Branding{})
	r := gin.New()
	r.GET("/roles", scoped(&models.Organization{ID: 4}), h.RolesHandler())

	w, body := get(r, "/roles")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	data := body["data"].(map[string]interface{})
	if data["organization_id"] != float64(4) {
		t.Errorf("organization_id = %v", data["organization_id"])
	}
	perms := data["permissions"].([]interface{})
	want := []string{"courses.view", "roles.view", "sessions.manage"}
	if len(perms) != len(want) {
		t.Fatalf("permissions = %v, want %v", perms, want)
	}
	for i, p := range want {
		if perms[i] != p {
			t.Errorf("permissions[%d] = %v, want %s", i, perms[i], p)
		}
	}
}

func TestRolesHandler_StoreError(t *testing.T) {
	h := NewHandlers(fakeRoles{err: errors.New("boom")}, tenant.Branding{})
	r := gin.New()
	r.GET("/roles", scoped(&models.Organization{ID: 4}), h.RolesHandler())

	w, body := get(r, "/roles")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	e := body["error"].(map[string]interface{})
	if e["message"] != "Internal server error" {
		t.Errorf("message = %v", e["message"])
	}
}
