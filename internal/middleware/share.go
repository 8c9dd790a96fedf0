package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/iep-planner-api/internal/models"
	appErrors "github.com/noah-isme/iep-planner-api/pkg/errors"
	"github.com/noah-isme/iep-planner-api/pkg/response"
)

// ContextShareKey is the gin context key storing validated share link claims.
const ContextShareKey = "shareClaims"

// ShareTokenValidator verifies share link tokens.
type ShareTokenValidator interface {
	ValidateToken(token string) (*models.ShareClaims, error)
}

// ShareToken admits requests carrying a valid share link, read from a bearer header or the
// token query parameter.
func ShareToken(validator ShareTokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if header := c.GetHeader("Authorization"); header != "" {
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
				c.Abort()
				return
			}
			token = strings.TrimSpace(parts[1])
		}
		if token == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "share token required"))
			c.Abort()
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextShareKey, claims)
		c.Next()
	}
}

// ShareClaims returns the claims stored by ShareToken.
func ShareClaims(c *gin.Context) *models.ShareClaims {
	if value, ok := c.Get(ContextShareKey); ok {
		if claims, ok := value.(*models.ShareClaims); ok {
			return claims
		}
	}
	return nil
}
