package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/lms-platform/lms-backend/internal/config"
)

func applySecurityHeaders(cfg SecurityHeadersConfig) *httptest.ResponseRecorder {
	r := gin.New()
	r.Use(SecurityHeadersMiddleware(cfg))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func TestSecurityHeadersMiddleware_APIDefaults(t *testing.T) {
	w := applySecurityHeaders(APISecurityHeadersConfig())

	want := map[string]string{
		"Strict-Transport-Security":    "max-age=31536000; includeSubDomains",
		"X-Frame-Options":              "DENY",
		"X-Content-Type-Options":       "nosniff",
		"Content-Security-Policy":      "default-src 'none'; frame-ancestors 'none'",
		"Referrer-Policy":              "no-referrer",
		"Cross-Origin-Resource-Policy": "same-origin",
	}
	for h, v := range want {
		if got := w.Header().Get(h); got != v {
			t.Errorf("%s = %q, want %q", h, got, v)
		}
	}
	if got := w.Header().Get("Permissions-Policy"); got != "" {
		t.Errorf("Permissions-Policy = %q, want empty", got)
	}
}

func TestSecurityHeadersMiddleware_OptionalHeadersDisabled(t *testing.T) {
	w := applySecurityHeaders(SecurityHeadersConfig{})
	for _, h := range []string{"Strict-Transport-Security", "X-Frame-Options", "Content-Security-Policy", "Referrer-Policy"} {
		if got := w.Header().Get(h); got != "" {
			t.Errorf("%s = %q, want empty", h, got)
		}
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
}

func TestSecurityHeadersConfigFrom(t *testing.T) {
	tests := []struct {
		name     string
		tls      bool
		wantHSTS string
	}{
		{"plain http", false, ""},
		{"tls", true, "max-age=31536000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.Security.TLS.Enabled = tt.tls
			w := applySecurityHeaders(SecurityHeadersConfigFrom(cfg))
			if got := w.Header().Get("Strict-Transport-Security"); got != tt.wantHSTS {
				t.Errorf("Strict-Transport-Security = %q, want %q", got, tt.wantHSTS)
			}
		})
	}
}
