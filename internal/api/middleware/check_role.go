package middleware

import (
	"slices"

	"Plume/internal/pkg/consts"
	"Plume/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// CheckRoles 检查当前用户是否拥有至少一个指定的角色
func CheckRoles(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles := c.GetStringSlice(consts.CtxRoles)

		hasPermission := false
		for _, required := range requiredRoles {
			if slices.Contains(roles, required) {
				hasPermission = true
				break
			}
		}

		if !hasPermission {
			response.FailWithKind(c, response.Forbidden, "Forbidden", "权限不足：无权访问该资源")
			c.Abort()
			return
		}

		c.Next()
	}
}
