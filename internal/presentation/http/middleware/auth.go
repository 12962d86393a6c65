package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/security"
)

// DashboardAuthMiddleware guards analytics read endpoints. Tokens are signed
// with the tenant's own secret, so the tenant context must already be
// resolved when this runs.
func DashboardAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantCtx, ok := GetTenantContext(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "tenant context not found"})
			c.Abort()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := security.ValidateJWT(tokenString, tenantCtx.Config.JWTSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		if claimedTenant, ok := claims["tenantId"].(string); ok && claimedTenant != tenantCtx.TenantID {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token does not match tenant"})
			c.Abort()
			return
		}

		c.Next()
	}
}
