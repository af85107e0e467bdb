package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"finbot/internal/logger"
	"finbot/internal/uuid"
)

// RequestIDHeader is echoed on every response.
const RequestIDHeader = "X-Request-ID"

// RequestLogging returns a Gin middleware that tags each request with an id,
// puts a logger carrying that id in the request context and logs the outcome.
// Health checks are logged at debug level.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := uuid.OrDefault(c.GetHeader(RequestIDHeader))
		c.Writer.Header().Set(RequestIDHeader, requestID)

		log, ctx := logger.WithCorrelationID(c.Request.Context(), "request_id", requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		logFn := log.Infow
		if c.FullPath() == "/api/health" {
			logFn = log.Debugw
		}
		logFn("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}
