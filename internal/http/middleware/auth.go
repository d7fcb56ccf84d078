package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	// headerAdminToken authenticates operators on /admin routes. The token is
	// a single shared secret loaded from configuration; per-operator identity
	// is out of scope for this service.
	headerAdminToken = "X-Admin-Token"

	// headerParticipantEmail identifies the caller on participant-scoped
	// reads such as "my commitments". Upstream gateway is trusted to have
	// authenticated the email; this service only scopes queries by it.
	headerParticipantEmail = "X-Participant-Email"
)

// ParticipantEmail returns the caller's email from the request, empty when
// absent.
func ParticipantEmail(c *gin.Context) string {
	return c.GetHeader(headerParticipantEmail)
}

// RequireParticipant rejects requests missing the participant email header.
func RequireParticipant() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ParticipantEmail(c) == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "bad_request",
				"message":    "X-Participant-Email header is required",
			})
			return
		}
		c.Next()
	}
}

// AdminAuth guards operator endpoints with a constant-time comparison against
// the configured token. An empty configured token disables the admin surface
// entirely rather than leaving it open.
func AdminAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(headerAdminToken)
		if token == "" || got == "" ||
			subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "unauthorized",
				"message":    "admin token missing or invalid",
			})
			return
		}
		c.Next()
	}
}
