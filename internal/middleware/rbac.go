package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/nidoapp/nido-api/internal/models"
	appErrors "github.com/nidoapp/nido-api/pkg/errors"
	"github.com/nidoapp/nido-api/pkg/response"
)

// RequireRoles enforces role-based access control for routes. Pending
// accounts never match, so they are locked out of every protected route
// until approved.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := claimsValue.(*models.JWTClaims)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowed[claims.Role]; ok {
			c.Next()
			return
		}

		if claims.Role == models.RolePending {
			response.Error(c, appErrors.ErrPendingApproval)
			c.Abort()
			return
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
