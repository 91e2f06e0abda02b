// File: middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/utils"

	"github.com/gin-gonic/gin"
)

const authContextKey = "auth"

// Authenticate resolves the bearer token into an AuthContext and stores it
// in the gin context. The session registry is consulted when available so a
// logout actually kills outstanding tokens.
func Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			abortUnauthorized(c, "missing bearer token")
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		userID, role, err := utils.ExtractIdentity(token)
		if err != nil || userID == "" {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		if cache := utils.GetCacheClient(); cache != nil {
			if !utils.SessionValid(c.Request.Context(), cache, userID, utils.HashToken(token)) {
				abortUnauthorized(c, "session revoked")
				return
			}
		}

		c.Set(authContextKey, models.AuthContext{UserID: userID, Role: models.Role(role)})
		c.Next()
	}
}

// RequireStaff rejects callers below staff. Must run after Authenticate.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !AuthFrom(c).IsStaff() {
			abortForbidden(c, "staff access required")
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects everyone but admins. Must run after Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if AuthFrom(c).Role != models.RoleAdmin {
			abortForbidden(c, "admin access required")
			return
		}
		c.Next()
	}
}

// AuthFrom returns the caller identity set by Authenticate. The zero value
// means an unauthenticated request reached a handler, which only happens on
// deliberately public routes.
func AuthFrom(c *gin.Context) models.AuthContext {
	if v, ok := c.Get(authContextKey); ok {
		if auth, ok := v.(models.AuthContext); ok {
			return auth
		}
	}
	return models.AuthContext{}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, utils.APIResponse{Success: false, Message: message})
}

func abortForbidden(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusForbidden, utils.APIResponse{Success: false, Message: message})
}
