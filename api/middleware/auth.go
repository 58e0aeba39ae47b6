package middleware

import (
	"net/http"
	"strings"

	"github.com/BinLe1988/cofounder-match/pkg/utils"

	"github.com/gin-gonic/gin"
)

// UserIDKey 上下文中保存调用方用户ID的键
const UserIDKey = "userID"

// Auth 验证JWT令牌中间件
func Auth(manager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			c.Abort()
			return
		}

		claims, err := manager.ParseToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		// 将用户ID存储在上下文中
		c.Set(UserIDKey, claims.UserID)

		c.Next()
	}
}
