package security

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	jwtSecret         = []byte("Raqtpie")
	jwtIssuer         = "Volunteer"
	jwtExpirationTime = time.Hour * 24
)

// UserClaims 主体: 用户 ID 与角色
type UserClaims struct {
	UserID uint64 `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Configure 启动时从配置注入，空值保持默认
func Configure(secret, issuer string, expireHour int) {
	if secret != "" {
		jwtSecret = []byte(secret)
	}
	if issuer != "" {
		jwtIssuer = issuer
	}
	if expireHour > 0 {
		jwtExpirationTime = time.Duration(expireHour) * time.Hour
	}
}
