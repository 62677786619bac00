package admin

import (
	"strings"

	handlershared "github.com/ghost-toolkit/internal/http/handlers/shared"
	"github.com/ghost-toolkit/internal/http/response"
	"github.com/ghost-toolkit/internal/repository"
	"github.com/ghost-toolkit/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateAccountRequest 创建账户请求
type CreateAccountRequest struct {
	UID         uint   `json:"uid" binding:"required"`
	SpinBalance int64  `json:"spin_balance"`
	HWID        string `json:"hwid"`
}

// CreateAccount 创建权益账户
func (h *Handler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	account, err := h.AccountService.CreateAccount(c.Request.Context(), service.CreateAccountInput{
		UID:         req.UID,
		SpinBalance: req.SpinBalance,
		HWID:        req.HWID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, account)
}

// GetAccount 查询账户详情（含兑换记录）
func (h *Handler) GetAccount(c *gin.Context) {
	uid, err := service.ParseUID(c.Param("uid"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	detail, err := h.AccountService.GetAccount(c.Request.Context(), uid)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"account": detail.Account,
		"status":  detail.Status,
	})
}

// GetAccounts 查询账户列表
func (h *Handler) GetAccounts(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	accounts, total, err := h.AccountService.ListAccounts(c.Request.Context(), repository.AccountListFilter{
		Page:     page,
		PageSize: pageSize,
		HWID:     strings.TrimSpace(c.Query("hwid")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, accounts, response.BuildPagination(page, pageSize, total))
}
