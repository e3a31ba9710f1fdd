package middleware

import (
	"net/http"

	"github.com/dropship/backoffice/internal/domain/identity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RoleConfig holds configuration for role middleware
type RoleConfig struct {
	// Logger for access denial logging
	Logger *zap.Logger
}

// RequireRole creates middleware that only lets the given roles through.
// Requests without validated JWT claims are rejected with 401.
func RequireRole(roles ...identity.Role) gin.HandlerFunc {
	return RequireRoleWithConfig(RoleConfig{}, roles...)
}

// RequireRoleWithConfig creates role middleware with custom config
func RequireRoleWithConfig(cfg RoleConfig, roles ...identity.Role) gin.HandlerFunc {
	allowed := make(map[identity.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		role := GetJWTRole(c)
		if role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Authentication required",
				},
			})
			return
		}

		if !allowed[identity.Role(role)] {
			if cfg.Logger != nil {
				cfg.Logger.Warn("Access denied by role",
					zap.String("role", role),
					zap.String("path", c.Request.URL.Path),
				)
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "Insufficient role for this operation",
				},
			})
			return
		}

		c.Next()
	}
}

// RequireAdmin only lets ADMIN users through
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(identity.RoleAdmin)
}

// RequireStaff lets ADMIN and MANAGER users through
func RequireStaff() gin.HandlerFunc {
	return RequireRole(identity.RoleAdmin, identity.RoleManager)
}

// SellerScope returns the caller's user ID when the caller is a SELLER,
// nil otherwise. Handlers pass the result to application services so that
// sellers only ever see their own leads, wallets and postback configs while
// ADMIN and MANAGER see the whole tenant.
func SellerScope(c *gin.Context) *uuid.UUID {
	if identity.Role(GetJWTRole(c)) != identity.RoleSeller {
		return nil
	}
	userID, err := uuid.Parse(GetJWTUserID(c))
	if err != nil {
		return nil
	}
	return &userID
}
