package shared

import (
	"strconv"
	"strings"

	"github.com/ghost-toolkit/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ContextUint 读取中间件写入的 uint 值，缺失时按未授权处理
func ContextUint(c *gin.Context, key string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}
	if id, ok := value.(uint); ok && id > 0 {
		return id, true
	}
	RespondError(c, response.CodeInternal, "error.internal", nil)
	return 0, false
}

// QueryUint 读取可选的无符号整数查询参数；present 为 false 表示未传
func QueryUint(c *gin.Context, name string) (value uint, present bool, ok bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, false, true
	}
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return 0, true, false
	}
	return uint(parsed), true, true
}

// QueryBool 读取可选的布尔查询参数
func QueryBool(c *gin.Context, name string) (*bool, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return nil, false
	}
	return &parsed, true
}
