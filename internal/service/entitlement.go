package service

import (
	"strings"
	"time"

	"github.com/ghost-toolkit/internal/constants"
	"github.com/ghost-toolkit/internal/models"
)

const day = 24 * time.Hour

// EntitlementInput 权益计算输入
type EntitlementInput struct {
	KeyID       uint
	Class       string
	Code        string
	Kind        string // 订阅类型
	Account     *models.Account
	ClaimedHWID string
	Now         time.Time
}

// HistoryItem 待追加的兑换记录
type HistoryItem struct {
	KeyID uint
	Class string
	Code  string
}

// EntitlementUpdate 账户变更量
type EntitlementUpdate struct {
	BalanceDelta int64
	BindHWID     string
	Expiration   *time.Time
	History      *HistoryItem
	RedeemedAt   time.Time
}

// IsZero 是否无任何变更
func (u EntitlementUpdate) IsZero() bool {
	return u.BalanceDelta == 0 && u.BindHWID == "" && u.Expiration == nil && u.History == nil
}

// SubscriptionDuration 订阅密钥等级对应时长，未知等级按 1 天
func SubscriptionDuration(class string) time.Duration {
	switch strings.TrimSpace(class) {
	case constants.KeyClassMonth:
		return 30 * day
	case constants.KeyClassWeek:
		return 7 * day
	case constants.KeyClassDay:
		return day
	default:
		return day
	}
}

// ComputeEntitlement 根据密钥等级与账户快照计算变更，不做任何 I/O
func ComputeEntitlement(in EntitlementInput) (EntitlementUpdate, error) {
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	update := EntitlementUpdate{RedeemedAt: now}

	switch in.Kind {
	case constants.SubscriptionTypeSpin:
		spins, err := ParseSpinCount(in.Class)
		if err != nil {
			return EntitlementUpdate{}, err
		}
		update.BalanceDelta = spins
		return update, nil

	case constants.SubscriptionTypeToolkit:
		claimed := strings.TrimSpace(in.ClaimedHWID)
		if claimed == "" {
			return EntitlementUpdate{}, ErrMalformedKey
		}
		if in.Account.HasHWID() {
			if *in.Account.HWID != claimed {
				return EntitlementUpdate{}, ErrHwidMismatch
			}
		} else {
			update.BindHWID = claimed
		}
		expiration := now.Add(SubscriptionDuration(in.Class))
		update.Expiration = &expiration
		update.History = &HistoryItem{KeyID: in.KeyID, Class: in.Class, Code: in.Code}
		return update, nil

	default:
		return update, nil
	}
}

// SubscriptionStatus 订阅状态：未设置 none，已过期 expired，否则 active
func SubscriptionStatus(expiration *time.Time, now time.Time) string {
	if expiration == nil || expiration.IsZero() {
		return constants.SubscriptionStatusNone
	}
	if expiration.After(now) {
		return constants.SubscriptionStatusActive
	}
	return constants.SubscriptionStatusExpired
}
