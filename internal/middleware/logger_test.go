package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/lms-platform/lms-backend/internal/auth"
	"github.com/lms-platform/lms-backend/internal/db/models"
	"github.com/lms-platform/lms-backend/internal/guard"
	"github.com/lms-platform/lms-backend/internal/tenant"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestLoggerMiddleware_IncludesTenantAndPrincipal(t *testing.T) {
	buf := captureLogs(t)

	r := gin.New()
	r.Use(RequestIDMiddleware(), LoggerMiddleware())
	r.GET("/api/user", func(c *gin.Context) {
		setPrincipal(c, auth.NewPrincipal(&models.User{ID: 7, Role: models.RoleLearner}))
		c.Set(TenantContextKey, tenant.Context{Organization: &models.Organization{ID: 3}, Source: tenant.SourceSubdomain})
		c.Set(TenantSourceKey, "subdomain-lookup")
		c.Status(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/user?x=1", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("decode log record %q: %v", buf.String(), err)
	}
	want := map[string]any{
		"msg":             "http request",
		"level":           "WARN",
		"path":            "/api/user",
		"query":           "x=1",
		"request_id":      "req-1",
		"tenant_source":   "subdomain-lookup",
		"organization_id": float64(3),
		"user_id":         float64(7),
		"status":          float64(418),
	}
	for k, v := range want {
		if rec[k] != v {
			t.Errorf("%s = %v, want %v", k, rec[k], v)
		}
	}
}

func TestAbortWithRejection_LogsInternalCause(t *testing.T) {
	buf := captureLogs(t)

	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		AbortWithRejection(c, guard.Internal("load organization", errSentinel))
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if strings.Contains(w.Body.String(), "sentinel") {
		t.Errorf("response leaked cause: %s", w.Body.String())
	}
	if !strings.Contains(buf.String(), "sentinel") {
		t.Errorf("log missing cause: %s", buf.String())
	}
}

var errSentinel = sentinelError("sentinel failure")

type sentinelError string

func (e sentinelError) Error() string { return string(e) }

func TestAbortWithError_Envelope(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) { AbortWithError(c, http.StatusTooManyRequests, "RATE_LIMITED", "slow down") })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := w.Body.String(); got != `{"success":false,"error":{"code":"RATE_LIMITED","message":"slow down"}}` {
		t.Errorf("body = %s", got)
	}
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware(testConfig()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("allowed origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://app.lms.test")
		r.ServeHTTP(w, req)
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.lms.test" {
			t.Errorf("Allow-Origin = %q", got)
		}
		if got := w.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, "X-Organization-ID") {
			t.Errorf("Allow-Headers = %q", got)
		}
	})

	t.Run("foreign origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.test")
		r.ServeHTTP(w, req)
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Allow-Origin = %q, want empty", got)
		}
	})

	t.Run("preflight", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", "https://app.lms.test")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", w.Code)
		}
	})
}
