package requestid

import (
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header carries the request id in both directions.
const Header = "X-Request-ID"

const contextKey = "request_id"

// caller ids end up in logs, so only short token-like values are trusted
var validID = regexp.MustCompile(`^[A-Za-z0-9._:\-]{1,128}$`)

// Middleware tags each request with an id, reusing the caller's X-Request-ID when it looks like one.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if !validID.MatchString(id) {
			id = uuid.NewString()
		}
		c.Set(contextKey, id)
		c.Header(Header, id)
		c.Next()
	}
}

// Value returns the request id stored by Middleware, or "" outside it.
func Value(c *gin.Context) string {
	return c.GetString(contextKey)
}
