package admin

import (
	"errors"
	"strings"

	handlershared "github.com/ghost-toolkit/internal/http/handlers/shared"
	"github.com/ghost-toolkit/internal/http/response"
	"github.com/ghost-toolkit/internal/models"
	"github.com/ghost-toolkit/internal/service"

	"github.com/gin-gonic/gin"
)

// GenerateKeysRequest 批量生成密钥请求
type GenerateKeysRequest struct {
	Title            string `json:"title"`
	SubscriptionType string `json:"subscription_type"`
	SpinCount        int    `json:"spin_count"`
	Count            int    `json:"count" binding:"required"`
}

// GenerateKeysResponse 批量生成密钥响应
type GenerateKeysResponse struct {
	Batch *models.KeyBatch   `json:"batch"`
	Keys  []models.AccessKey `json:"keys,omitempty"`
	Async bool               `json:"async"`
}

// GenerateKeys 批量生成密钥
func (h *Handler) GenerateKeys(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req GenerateKeysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	result, err := h.KeyService.GenerateKeys(c.Request.Context(), service.GenerateKeysInput{
		Title:            req.Title,
		SubscriptionType: req.SubscriptionType,
		SpinCount:        req.SpinCount,
		Count:            req.Count,
		CreatedBy:        &adminID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	requestLog(c).Infow("admin_key_batch_created",
		"admin_id", adminID,
		"batch_no", result.Batch.BatchNo,
		"count", result.Batch.Quantity,
		"async", result.Async,
	)
	response.Success(c, GenerateKeysResponse{
		Batch: result.Batch,
		Keys:  result.Keys,
		Async: result.Async,
	})
}

// GetKeys 查询密钥列表
func (h *Handler) GetKeys(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	redeemedUID, _, ok := handlershared.QueryUint(c, "redeemed_uid")
	if !ok {
		return
	}

	keys, total, err := h.KeyService.ListKeys(c.Request.Context(), service.KeyListInput{
		Code:             strings.TrimSpace(c.Query("code")),
		State:            c.Query("state"),
		SubscriptionType: c.Query("subscription_type"),
		BatchNo:          strings.TrimSpace(c.Query("batch_no")),
		RedeemedUID:      redeemedUID,
		Page:             page,
		PageSize:         pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, keys, response.BuildPagination(page, pageSize, total))
}

// GetKeyBatch 按批次号查询生成批次
func (h *Handler) GetKeyBatch(c *gin.Context) {
	batchNo := strings.TrimSpace(c.Param("batch_no"))
	if batchNo == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	batch, err := h.KeyService.GetBatch(c.Request.Context(), batchNo)
	if err != nil {
		if errors.Is(err, service.ErrKeyBatchInvalid) {
			respondError(c, response.CodeNotFound, "error.key_batch_not_found", nil)
			return
		}
		respondServiceError(c, err)
		return
	}
	response.Success(c, batch)
}
