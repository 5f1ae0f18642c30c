// Package middleware contains Gin middleware functions.
// Middleware in Gin is a handler that runs before (or after) your route handler.
// It calls c.Next() to proceed or c.Abort() to stop the chain.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContextKeyAPIKey is where the auth middleware stores the caller's key.
const ContextKeyAPIKey = "api_key"

// APIKeyAuth returns middleware that validates API keys.
// The key can be provided via X-API-Key header or api_key query param.
//
// With no keys configured the API is open, which is how a bot running next
// to the service usually calls it. Rate limiting then falls back to the
// client IP.
func APIKeyAuth(validKeys []string) gin.HandlerFunc {
	if len(validKeys) == 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return keyAuth(validKeys, "API key", http.StatusUnauthorized)
}

// AdminKeyAuth returns middleware that validates admin API keys.
// Unlike APIKeyAuth it never opens up: no admin keys means no admin access.
func AdminKeyAuth(adminKeys []string) gin.HandlerFunc {
	return keyAuth(adminKeys, "admin API key", http.StatusForbidden)
}

// keyAuth checks the request key against validKeys. A missing key is always
// 401; a wrong one gets invalidStatus.
//
// Go closures: the returned handler captures keySet.
func keyAuth(validKeys []string, label string, invalidStatus int) gin.HandlerFunc {
	// Go doesn't have a built-in Set type, so we use map[string]struct{} —
	// struct{} takes zero bytes of memory.
	keySet := make(map[string]struct{}, len(validKeys))
	for _, k := range validKeys {
		keySet[k] = struct{}{}
	}

	return func(c *gin.Context) {
		key := c.GetHeader("X-API-Key")
		if key == "" {
			key = c.Query("api_key")
		}

		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing " + label,
			})
			return
		}

		if _, ok := keySet[key]; !ok {
			c.AbortWithStatusJSON(invalidStatus, gin.H{
				"error": "invalid " + label,
			})
			return
		}

		// Store the key in the context for downstream handlers (e.g., rate limiting).
		c.Set(ContextKeyAPIKey, key)
		c.Next()
	}
}
