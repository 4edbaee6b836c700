package middleware

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/lms-platform/lms-backend/internal/auth"
	"github.com/lms-platform/lms-backend/internal/config"
	"github.com/lms-platform/lms-backend/internal/db/models"
)

var (
	userCols = []string{"id", "name", "email", "role", "organization_id", "owned_organization_id", "created_at", "updated_at"}
	orgCols  = []string{
		"id", "slug", "custom_domain", "owner_user_id",
		"organization_name", "organization_logo", "organization_favicon",
		"primary_color", "secondary_color", "accent_color",
		"custom_css", "login_background_image", "footer_text",
		"status", "whitelabel_enabled", "created_at", "updated_at",
	}
)

func orgRow(id int64, slug string, domain any, status string) []driver.Value {
	now := time.Now()
	return []driver.Value{
		id, slug, domain, nil,
		slug + " academy", nil, nil,
		"#112233", nil, nil,
		nil, nil, nil,
		status, true, now, now,
	}
}

func newSQLMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Tenancy.OrgQueryParam = "org"
	cfg.Tenancy.OrganizationHeader = "X-Organization-ID"
	cfg.Tenancy.Branding = config.BrandingConfig{Name: "LMS", PrimaryColor: "#000000"}
	cfg.Security.CORS.AllowedOrigins = []string{"https://app.lms.test"}
	return cfg
}

func bearer(t *testing.T, userID int64) string {
	t.Helper()
	tok, err := auth.GenerateJWT(userID, "user@lms.test", "", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	return "Bearer " + tok
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return body
}

func int64Ptr(v int64) *int64 { return &v }

// fakeUsers is an in-memory UserLoader.
type fakeUsers struct {
	users map[int64]*models.User
	err   error
}

func (f fakeUsers) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[id], nil
}
