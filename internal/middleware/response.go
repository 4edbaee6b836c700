package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lms-platform/lms-backend/internal/guard"
	"github.com/lms-platform/lms-backend/internal/telemetry"
)

// ErrorBody is the error part of the failure envelope.
type ErrorBody struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Debug   *guard.Debug `json:"debug,omitempty"`
}

// ErrorResponse is the envelope written for every rejected request.
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

// AbortWithError writes the failure envelope and aborts the chain.
func AbortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{Code: code, Message: message},
	})
}

// AbortWithRejection converts err to a guard rejection, records it and aborts.
// Internal causes are logged but never written to the client.
func AbortWithRejection(c *gin.Context, err error) {
	rej := guard.AsRejection(err)
	telemetry.AccessGuardRejectionsTotal.WithLabelValues(string(rej.Kind)).Inc()

	attrs := []any{
		"kind", rej.Kind,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"request_id", c.GetString(RequestIDKey),
	}
	if p := GetPrincipal(c); p != nil {
		attrs = append(attrs, "user_id", p.ID())
	}
	if rej.Kind == guard.KindInternal {
		slog.ErrorContext(c.Request.Context(), "request failed", append(attrs, "error", rej.Err)...)
	} else {
		slog.InfoContext(c.Request.Context(), "request rejected", append(attrs, "reason", rej.Message)...)
	}

	c.AbortWithStatusJSON(rej.Status(), ErrorResponse{
		Error: ErrorBody{Code: rej.Code(), Message: rej.Message, Debug: rej.Debug},
	})
}

// Success writes data in the success envelope.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}
