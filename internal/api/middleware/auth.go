package middleware

import (
	"Volunteer/internal/pkg/consts"
	"Volunteer/internal/pkg/logger"
	"Volunteer/internal/pkg/redis"
	"Volunteer/internal/pkg/response"
	"Volunteer/internal/pkg/security"
	"context"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	RoleKey       = "role"
	tokenQueryKey = "token"
)

// AuthMiddleware 负责验证 JWT 并将用户身份信息注入 Context
// websocket 握手无法携带 Header，允许 ?token= 兜底
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			response.Fail(c, response.Unauthorized, "Token 缺失或格式错误")
			c.Abort()
			return
		}

		claims, err := Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			response.Fail(c, response.Unauthorized, err.Error())
			c.Abort()
			return
		}

		c.Set(logger.UserIDKey, claims.UserID)
		c.Set(RoleKey, claims.Role)

		newCtx := context.WithValue(c.Request.Context(), logger.UserIDKey, claims.UserID)
		c.Request = c.Request.WithContext(newCtx)

		c.Next()
	}
}

// Authenticate 校验签名并检查是否已注销
func Authenticate(ctx context.Context, tokenString string) (*security.UserClaims, error) {
	signature, err := security.ExtractSignature(tokenString)
	if err != nil {
		return nil, errTokenInvalid
	}

	value, err := redis.GetValue(ctx, consts.TokenRevokedKey+signature)
	if err != nil {
		return nil, errAuthUnavailable
	}
	if value != "" {
		return nil, errTokenInvalid
	}

	claims, err := security.ValidateToken(tokenString)
	if err != nil {
		return nil, errTokenInvalid
	}
	return claims, nil
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return c.Query(tokenQueryKey)
}
