package middleware

import (
	"os"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/lms-platform/lms-backend/internal/auth"
)

func TestMain(m *testing.M) {
	os.Setenv(auth.SecretEnvVar, "test-jwt-secret-that-is-32-chars!!")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}
