// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements Idempotency-Key header handling. Financial mutations
// (committing funds, refund-all, release-all) must carry a client-supplied
// key; the middleware validates its shape at the edge and stashes the
// normalized value in the request context. The durable lookup, replay, and
// conflict detection live in the service layer against the idempotency
// store — transport only decides whether a key is present and well-formed.
package middleware

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the canonical request header clients use to convey
// an idempotency key. The value must be stable for a given semantic
// operation so retries can be deduplicated.
const HeaderIdempotencyKey = "Idempotency-Key"

const ctxKeyIdemKey = "idem.key"

// keyMaxLen caps accepted key length; the storage column is sized to match.
const keyMaxLen = 200

// keyPattern is an RFC-7230-ish token plus common safe characters.
var keyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// GetIdempotencyKey returns the validated idempotency key stashed by
// RequireIdempotencyKey. The second return value indicates presence.
// Handlers should prefer this over reading the header directly.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// RequireIdempotencyKey rejects requests without a well-formed
// Idempotency-Key header. A missing key is a 400 before any side effect is
// attempted; a malformed key likewise. On success the key is stashed for
// GetIdempotencyKey.
func RequireIdempotencyKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "bad_request",
				"message":    "Idempotency-Key header is required for this operation",
			})
			return
		}
		if len(key) > keyMaxLen || !keyPattern.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "bad_request",
				"message":    "invalid Idempotency-Key",
			})
			return
		}
		c.Set(ctxKeyIdemKey, key)
		c.Next()
	}
}
