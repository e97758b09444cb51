package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-desk-api/internal/models"
	appErrors "github.com/noah-isme/academy-desk-api/pkg/errors"
	"github.com/noah-isme/academy-desk-api/pkg/response"
)

// RequireRoles only lets callers with one of the given roles through.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Staff covers every desk role allowed to run admissions.
var Staff = []models.UserRole{models.RoleOwner, models.RoleAdmin, models.RoleStaff}

// Managers may change the catalogue and run reports.
var Managers = []models.UserRole{models.RoleOwner, models.RoleAdmin}
