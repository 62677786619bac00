package models

import "time"

// Account 用户权益账户
type Account struct {
	UID           uint              `gorm:"primarykey;autoIncrement:false" json:"uid"`              // 用户ID（外部账户体系分配）
	SpinBalance   int64             `gorm:"not null;default:0" json:"spin_balance"`                 // 抽奖次数余额
	HWID          *string           `gorm:"column:hwid;type:varchar(191);index" json:"hwid"`        // 绑定设备（首次兑换绑定，之后不可变）
	KeyExpiration *time.Time        `gorm:"index" json:"key_expiration"`                            // 订阅到期时间
	Version       uint64            `gorm:"not null;default:0" json:"-"`                            // 乐观锁版本
	CreatedAt     time.Time         `json:"created_at"`                                             // 创建时间
	UpdatedAt     time.Time         `json:"updated_at"`                                             // 更新时间
	History       []RedemptionEntry `gorm:"foreignKey:UID;references:UID" json:"history,omitempty"` // 兑换记录
}

// TableName 指定表名
func (Account) TableName() string {
	return "accounts"
}

// HasHWID 是否已绑定设备
func (a *Account) HasHWID() bool {
	return a != nil && a.HWID != nil && *a.HWID != ""
}

// RedemptionEntry 账户兑换记录（按 ID 递增即兑换顺序）
type RedemptionEntry struct {
	ID         uint      `gorm:"primarykey" json:"id"`                   // 主键
	UID        uint      `gorm:"index;not null" json:"uid"`              // 账户
	KeyID      uint      `gorm:"index" json:"key_id"`                    // 密钥ID
	Class      string    `gorm:"type:varchar(64);not null" json:"class"` // 密钥等级
	Code       string    `gorm:"type:varchar(80);not null" json:"code"`  // 密钥
	RedeemedAt time.Time `gorm:"index;not null" json:"redeemed_at"`      // 兑换时间
}

// TableName 指定表名
func (RedemptionEntry) TableName() string {
	return "redemption_entries"
}
