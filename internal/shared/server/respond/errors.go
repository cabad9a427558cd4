package respond

import (
	"github.com/gin-gonic/gin"

	"resume-analyzer/internal/shared/telemetry"
)

// ErrorResponse is the error body returned to clients.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

// Error sends an error response. Server faults are logged at error level,
// client mistakes at info level.
func Error(c *gin.Context, status int, code, detail string) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"detail":     detail,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if status >= 500 {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Info("http.rejected", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Detail: detail,
		Code:   code,
	})
}
