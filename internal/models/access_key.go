package models

import (
	"time"
)

// AccessKey 访问密钥（单次兑换）
type AccessKey struct {
	ID               uint       `gorm:"primarykey" json:"id"`                                          // 主键
	BatchID          *uint      `gorm:"index" json:"batch_id,omitempty"`                               // 批次ID
	Title            string     `gorm:"type:varchar(64);not null" json:"title"`                        // 标题（Day Access 等）
	Class            string     `gorm:"type:varchar(64);not null" json:"class"`                        // 等级（Month Key 或点数）
	Code             string     `gorm:"type:varchar(80);uniqueIndex;not null" json:"code"`             // 密钥
	State            string     `gorm:"type:varchar(24);index;not null;default:'active'" json:"state"` // 状态
	Published        bool       `gorm:"index;not null;default:true" json:"published"`                  // 是否发布
	SubscriptionType string     `gorm:"type:varchar(48);index;not null" json:"subscription_type"`      // 订阅类型
	RedeemedUID      *uint      `gorm:"index" json:"redeemed_uid,omitempty"`                           // 兑换账户
	RedeemedAt       *time.Time `gorm:"index" json:"redeemed_at"`                                      // 兑换时间
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt        time.Time  `json:"updated_at"`                                                    // 更新时间
	Batch            *KeyBatch  `gorm:"foreignKey:BatchID" json:"batch,omitempty"`                     // 批次信息
}

// TableName 指定表名
func (AccessKey) TableName() string {
	return "access_keys"
}
