package admin

import (
	"errors"

	handlershared "github.com/ghost-toolkit/internal/http/handlers/shared"
	"github.com/ghost-toolkit/internal/http/response"
	"github.com/ghost-toolkit/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type serviceErrorRule struct {
	target error
	code   int
	key    string
	logged bool
}

// 服务层错误到管理端响应的映射，未命中时统一返回内部错误
var serviceErrorRules = []serviceErrorRule{
	{target: service.ErrInvalidCredentials, code: response.CodeUnauthorized, key: "error.login_failed"},
	{target: service.ErrInvalidPassword, code: response.CodeBadRequest, key: "error.password_old_invalid"},
	{target: service.ErrAdminNotFound, code: response.CodeNotFound, key: "error.admin_not_found"},
	{target: service.ErrKeyBatchInvalid, code: response.CodeBadRequest, key: "error.key_batch_invalid"},
	{target: service.ErrKeyBatchTooLarge, code: response.CodeBadRequest, key: "error.key_batch_too_large"},
	{target: service.ErrQueueUnavailable, code: response.CodeServiceUnavailable, key: "error.queue_unavailable", logged: true},
	{target: service.ErrPrizeInvalid, code: response.CodeBadRequest, key: "error.prize_invalid"},
	{target: service.ErrAccountInvalid, code: response.CodeBadRequest, key: "error.account_invalid"},
	{target: service.ErrAccountExists, code: response.CodeConflict, key: "error.account_exists"},
	{target: service.ErrAccountNotFound, code: response.CodeNotFound, key: "error.account_not_found"},
}

type localizedError interface {
	Key() string
	Args() []interface{}
}

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

// respondServiceError 输出服务层错误，弱密码错误带上具体规则文案
func respondServiceError(c *gin.Context, err error) {
	var perr localizedError
	if errors.Is(err, service.ErrWeakPassword) && errors.As(err, &perr) {
		handlershared.RespondErrorf(c, response.CodeBadRequest, perr.Key(), perr.Args()...)
		return
	}
	for _, rule := range serviceErrorRules {
		if !errors.Is(err, rule.target) {
			continue
		}
		var cause error
		if rule.logged {
			cause = err
		}
		respondError(c, rule.code, rule.key, cause)
		return
	}
	if errors.Is(err, service.ErrWeakPassword) {
		respondError(c, response.CodeBadRequest, "error.password_weak", nil)
		return
	}
	respondError(c, response.CodeInternal, "error.internal", err)
}
