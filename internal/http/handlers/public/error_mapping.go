package public

import (
	"errors"
	"net/http"

	handlershared "github.com/ghost-toolkit/internal/http/handlers/shared"
	"github.com/ghost-toolkit/internal/http/response"
	"github.com/ghost-toolkit/internal/service"

	"github.com/gin-gonic/gin"
)

// 旧版客户端依赖的固定文案
const (
	msgInvalidKey          = "invalid key"
	msgInvalid             = "invalid"
	msgInsufficientBalance = "insufficient spin balance"
	msgNoPrizeWon          = "No prize won, if you are feeling lucky spin again!"
	msgInternalError       = "internal error"

	legacyTimeLayout = "2006-01-02T15:04:05"
)

// mappedLegacyError 定义业务错误到旧版响应文案的映射关系。
type mappedLegacyError struct {
	target  error
	message string
}

var redeemKeyErrorRules = []mappedLegacyError{
	{target: service.ErrKeyNotFound, message: msgInvalidKey},
	{target: service.ErrAccountNotFound, message: msgInvalidKey},
	{target: service.ErrMalformedKey, message: msgInvalidKey},
	{target: service.ErrPolicyViolation, message: msgInvalidKey},
}

var spinErrorRules = []mappedLegacyError{
	{target: service.ErrAccountNotFound, message: msgInvalid},
	{target: service.ErrMalformedKey, message: msgInvalid},
	{target: service.ErrNoPrizesConfigured, message: msgInvalid},
}

// respondLegacyError 业务错误返回 200 + 文案，存储错误返回 500。
func respondLegacyError(c *gin.Context, err error, rules []mappedLegacyError, event string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			response.Message(c, http.StatusOK, rule.message)
			return
		}
	}
	handlershared.RequestLog(c).Errorw(event, "path", c.FullPath(), "error", err)
	response.Message(c, http.StatusInternalServerError, msgInternalError)
}

func respondBalanceError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrAccountNotFound) || errors.Is(err, service.ErrMalformedKey) {
		c.JSON(http.StatusOK, gin.H{"spin_balance": 0})
		return
	}
	handlershared.RequestLog(c).Errorw("get_spin_balance_failed", "error", err)
	response.Message(c, http.StatusInternalServerError, msgInternalError)
}
