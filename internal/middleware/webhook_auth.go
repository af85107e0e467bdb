package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// WebhookSecretHeader carries the secret Telegram echoes on every webhook call.
const WebhookSecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookAuth creates a Gin middleware that rejects webhook calls whose
// secret token does not match the one registered with Telegram.
func WebhookAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				gin.H{"error": gin.H{"code": "WEBHOOK_NOT_CONFIGURED", "message": "Webhook secret is not configured"}})
			return
		}
		token := c.GetHeader(WebhookSecretHeader)
		if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				gin.H{"error": gin.H{"code": "INVALID_WEBHOOK_SECRET", "message": "Invalid or missing webhook secret"}})
			return
		}
		c.Next()
	}
}
