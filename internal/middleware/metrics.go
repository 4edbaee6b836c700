package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lms-platform/lms-backend/internal/telemetry"
)

// unmatchedRoute labels requests that matched no route so arbitrary paths do not
// create new series.
const unmatchedRoute = "<no-route>"

// MetricsMiddleware records http_requests_total and http_request_duration_seconds,
// labelled with the matched route template (c.FullPath()). Register it after
// RequestIDMiddleware so rejections written by later middleware are counted with
// their final status.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = unmatchedRoute
		}
		method := c.Request.Method

		telemetry.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		telemetry.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
