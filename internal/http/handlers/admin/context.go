package admin

import (
	handlershared "github.com/ghost-toolkit/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

// getAdminID 读取 JWT 中间件写入的管理员ID
func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.ContextUint(c, "admin_id")
}
