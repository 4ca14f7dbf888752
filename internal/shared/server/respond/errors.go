package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lbs-connect/internal/shared/telemetry"
)

// Error codes carried in the envelope.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeRateLimited  = "RATE_LIMITED"
	CodeUpstream     = "UPSTREAM_ERROR"
	CodeInternal     = "INTERNAL"
)

// Error logs and sends a failure envelope.
func Error(c *gin.Context, status int, code, message string) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	telemetry.Error("http.error", fields)

	c.AbortWithStatusJSON(status, Envelope{
		Success: false,
		Error:   message,
		Code:    code,
	})
}

// FunctionError reports a failed function call. Function endpoints answer
// every failure with 400 and the error message.
func FunctionError(c *gin.Context, code string, err error) {
	Error(c, http.StatusBadRequest, code, err.Error())
}
