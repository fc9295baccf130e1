package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/services"
	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/utils"
)

// AdminAuthMiddleware validates that the user has admin privileges.
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := utils.ExtractToken(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, err.Error()))
			c.Abort()
			return
		}

		isDenylisted, err := services.IsDenylisted(tokenString)
		if err != nil {
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to check token status"))
			c.Abort()
			return
		}
		if isDenylisted {
			c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Token has been revoked"))
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, "Invalid or expired token"))
			c.Abort()
			return
		}

		role, ok := claims["role"].(string)
		if !ok || role != "admin" {
			zap.L().Warn("unauthorized admin access attempt", zap.String("ip", c.ClientIP()))
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, "Forbidden: Admins only"))
			c.Abort()
			return
		}

		// Skip the DB lookup in test mode so middleware tests can run
		// without a database behind the global handle.
		if gin.Mode() != gin.TestMode {
			userIDFloat, ok := claims["user_id"].(float64)
			if ok {
				userID := uint(userIDFloat)
				user, err := services.FindUserByID(userID)
				if err == nil {
					c.Set("user", user)
				}
			}
		}

		c.Next()
	}
}
