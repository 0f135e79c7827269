package middleware

import (
	"Volunteer/internal/pkg/response"
	"slices"

	"github.com/gin-gonic/gin"
)

// CheckRoles 当前用户角色必须在允许列表内
func CheckRoles(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !slices.Contains(allowed, c.GetString(RoleKey)) {
			response.Fail(c, response.Forbidden, "权限不足：无权访问该资源")
			c.Abort()
			return
		}
		c.Next()
	}
}
