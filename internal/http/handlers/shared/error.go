package shared

import (
	"github.com/ghost-toolkit/internal/http/response"
	"github.com/ghost-toolkit/internal/i18n"
	"github.com/ghost-toolkit/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 返回携带 request_id 的日志实例
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 按语言翻译错误键并输出统一错误响应
func RespondError(c *gin.Context, code int, key string, err error) {
	respond(c, code, i18n.T(i18n.ResolveLocale(c), key), err)
}

// RespondErrorf 翻译带参数的错误键
func RespondErrorf(c *gin.Context, code int, key string, args ...interface{}) {
	respond(c, code, i18n.Sprintf(i18n.ResolveLocale(c), key, args...), nil)
}

// RespondErrorWithMsg 直接使用给定文案输出错误响应
func RespondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	respond(c, code, msg, err)
}

func respond(c *gin.Context, code int, msg string, err error) {
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"code", code,
			"message", msg,
			"error", err,
		)
	}
	response.Error(c, code, msg)
}
