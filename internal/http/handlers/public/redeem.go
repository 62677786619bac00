package public

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ghost-toolkit/internal/constants"
	"github.com/ghost-toolkit/internal/service"

	"github.com/gin-gonic/gin"
)

// RedeemAccessKey 兑换普通访问密钥
// GET /ghost_rest_api/access_key_resource/:access_key
func (h *Handler) RedeemAccessKey(c *gin.Context) {
	result, err := h.RedemptionService.RedeemAccessKey(c.Request.Context(), c.Param("access_key"))
	if err != nil {
		respondLegacyError(c, err, redeemKeyErrorRules, "redeem_access_key_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Successfully redeemed access key " + result.Code,
		"subscription": result.Class,
		"redeemed_at":  result.RedeemedAt.Format(legacyTimeLayout),
	})
}

// RedeemSubscriptionKey 兑换订阅时长密钥，路径参数格式为 <uid>--<hwid>--<code>
// GET /hf_toolkit_rest_api/toolkit_sub_resource/:access_key
func (h *Handler) RedeemSubscriptionKey(c *gin.Context) {
	result, err := h.RedemptionService.RedeemSubscriptionKey(c.Request.Context(), c.Param("access_key"))
	if err != nil {
		respondLegacyError(c, err, redeemKeyErrorRules, "redeem_subscription_key_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Successfully redeemed access key " + result.Code,
		"subscription": result.Class,
		"redeemed_at":  result.RedeemedAt.Format(legacyTimeLayout),
		"expiration":   result.Expiration.Format(legacyTimeLayout),
		"hwid_access":  constants.HWIDAccessGranted,
		"status":       result.Status,
	})
}

// RedeemSpinKey 兑换点数密钥，路径参数格式为 <uid>-<code>
// GET /hf_toolkit_rest_api/redeem_spin_resource/:spin_key
func (h *Handler) RedeemSpinKey(c *gin.Context) {
	result, err := h.RedemptionService.RedeemSpinKey(c.Request.Context(), c.Param("spin_key"))
	if err != nil {
		respondLegacyError(c, err, redeemKeyErrorRules, "redeem_spin_key_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Successfully redeemed access key " + result.Code,
		"spins_bought": result.SpinsBought,
		"spin_balance": result.SpinBalance,
		"redeemed_at":  result.RedeemedAt.Format(legacyTimeLayout),
	})
}

// Spin 抽奖一次
// GET /hf_toolkit_rest_api/prize_resource/:uid
func (h *Handler) Spin(c *gin.Context) {
	uid, err := service.ParseUID(c.Param("uid"))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"message": msgInvalid})
		return
	}
	outcome, err := h.RedemptionService.Spin(c.Request.Context(), uid)
	if errors.Is(err, service.ErrInsufficientBalance) {
		c.JSON(http.StatusOK, gin.H{
			"message":      msgInsufficientBalance,
			"spin_balance": 0,
		})
		return
	}
	if err != nil {
		respondLegacyError(c, err, spinErrorRules, "spin_failed")
		return
	}
	if !outcome.Won || outcome.Prize == nil {
		c.JSON(http.StatusOK, gin.H{
			"message":      msgNoPrizeWon,
			"spin_balance": outcome.SpinBalance,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      fmt.Sprintf("Congratulations you have won %s of %s", outcome.Prize.Name, outcome.Prize.PayoutValue),
		"prize":        outcome.Prize.PayoutKey,
		"redeemed_at":  outcome.DrawnAt.Format(legacyTimeLayout),
		"spin_balance": outcome.SpinBalance,
	})
}

// GetSpinBalance 查询抽奖余额，账户不存在时返回 0
// GET /hf_toolkit_rest_api/spins_resource/:uid
func (h *Handler) GetSpinBalance(c *gin.Context) {
	uid, err := service.ParseUID(c.Param("uid"))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"spin_balance": 0})
		return
	}
	view, err := h.RedemptionService.GetSpinBalance(c.Request.Context(), uid)
	if err != nil {
		respondBalanceError(c, err)
		return
	}
	body := gin.H{
		"spin_balance": view.SpinBalance,
		"status":       view.Status,
	}
	if view.Expiration != nil {
		body["expiration"] = view.Expiration.Format(legacyTimeLayout)
	}
	c.JSON(http.StatusOK, body)
}
