package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/sudharshini/backend/internal/domain/identity"
	"github.com/sudharshini/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// RoleConfig holds configuration for role middleware
type RoleConfig struct {
	// Logger for middleware logging
	Logger *zap.Logger
	// OnDenied is called when access is denied (optional)
	OnDenied func(c *gin.Context, required []identity.Role)
}

// RequireRoles lets the request through when the caller holds any of roles
func RequireRoles(roles ...identity.Role) gin.HandlerFunc {
	return RequireRolesWithConfig(RoleConfig{}, roles...)
}

// RequireRolesWithConfig is RequireRoles with custom config
func RequireRolesWithConfig(cfg RoleConfig, roles ...identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnauthorized, "Authentication required", c.GetString(RequestIDKey)))
			return
		}

		role := identity.Role(claims.Role)
		if !slices.Contains(roles, role) {
			handleRoleDenied(c, cfg, roles, role)
			return
		}

		c.Next()
	}
}

func handleRoleDenied(c *gin.Context, cfg RoleConfig, required []identity.Role, actual identity.Role) {
	if cfg.OnDenied != nil {
		cfg.OnDenied(c, required)
		return
	}

	if cfg.Logger != nil {
		names := make([]string, len(required))
		for i, r := range required {
			names[i] = string(r)
		}
		cfg.Logger.Warn("Role check failed",
			zap.Int64("user_id", GetJWTUserID(c)),
			zap.String("role", string(actual)),
			zap.Strings("required_roles", names),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
	}

	c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeForbidden, "Access denied: insufficient role", c.GetString(RequestIDKey)))
}
