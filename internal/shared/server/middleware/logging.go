package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"lbs-connect/internal/shared/metrics"
	"lbs-connect/internal/shared/telemetry"
)

// Logging emits a structured log line and request metrics per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()
		metrics.ObserveHTTPRequest(c.Request.Method, c.FullPath(), status, latency)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      status,
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"user_id":     UserIDFromContext(c),
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if fn := c.GetString("function"); fn != "" {
			fields["function"] = fn
		}
		if matchCount, ok := c.Get("matchCount"); ok {
			fields["match_count"] = matchCount
		}
		telemetry.Info("request.complete", fields)
	}
}
