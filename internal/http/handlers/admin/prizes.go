package admin

import (
	"strings"

	handlershared "github.com/ghost-toolkit/internal/http/handlers/shared"
	"github.com/ghost-toolkit/internal/http/response"
	"github.com/ghost-toolkit/internal/models"
	"github.com/ghost-toolkit/internal/repository"
	"github.com/ghost-toolkit/internal/service"

	"github.com/gin-gonic/gin"
)

// CreatePrizeRequest 创建奖品请求
type CreatePrizeRequest struct {
	Name        string        `json:"name" binding:"required"`
	PayoutKey   string        `json:"payout_key" binding:"required"`
	PayoutValue string        `json:"payout_value"`
	Amount      *models.Money `json:"amount"`
	Published   *bool         `json:"published"`
}

// CreatePrize 创建奖品
func (h *Handler) CreatePrize(c *gin.Context) {
	var req CreatePrizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	prize, err := h.PrizeService.CreatePrize(c.Request.Context(), service.CreatePrizeInput{
		Name:        req.Name,
		PayoutKey:   req.PayoutKey,
		PayoutValue: req.PayoutValue,
		Amount:      req.Amount,
		Published:   req.Published,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, prize)
}

// GetPrizes 查询奖品列表
func (h *Handler) GetPrizes(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	prizes, total, err := h.PrizeService.ListPrizes(c.Request.Context(), repository.PrizeListFilter{
		Page:     page,
		PageSize: pageSize,
		Name:     strings.TrimSpace(c.Query("name")),
		State:    strings.TrimSpace(c.Query("state")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, prizes, response.BuildPagination(page, pageSize, total))
}

// GetSpinRecords 查询抽奖记录
func (h *Handler) GetSpinRecords(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	filter := repository.SpinRecordListFilter{Page: page, PageSize: pageSize}
	uid, _, ok := handlershared.QueryUint(c, "uid")
	if !ok {
		return
	}
	won, ok := handlershared.QueryBool(c, "won")
	if !ok {
		return
	}
	filter.UID = uid
	filter.Won = won

	records, total, err := h.PrizeService.ListSpinRecords(c.Request.Context(), filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, records, response.BuildPagination(page, pageSize, total))
}
