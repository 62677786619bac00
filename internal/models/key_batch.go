package models

import "time"

// KeyBatch 密钥生成批次
type KeyBatch struct {
	ID               uint        `gorm:"primarykey" json:"id"`                                  // 主键
	BatchNo          string      `gorm:"type:varchar(48);uniqueIndex;not null" json:"batch_no"` // 批次号
	Title            string      `gorm:"type:varchar(64);not null" json:"title"`                // 标题
	Class            string      `gorm:"type:varchar(64);not null" json:"class"`                // 等级
	SubscriptionType string      `gorm:"type:varchar(48);not null" json:"subscription_type"`    // 订阅类型
	Quantity         int         `gorm:"not null;default:0" json:"quantity"`                    // 生成数量
	Status           string      `gorm:"type:varchar(24);index;not null" json:"status"`         // 生成状态
	Error            string      `gorm:"type:varchar(255)" json:"error,omitempty"`              // 失败原因
	CreatedBy        *uint       `gorm:"index" json:"created_by,omitempty"`                     // 创建管理员ID
	CreatedAt        time.Time   `gorm:"index" json:"created_at"`                               // 创建时间
	UpdatedAt        time.Time   `json:"updated_at"`                                            // 更新时间
	Keys             []AccessKey `gorm:"foreignKey:BatchID" json:"keys,omitempty"`              // 批次密钥
}

// TableName 指定表名
func (KeyBatch) TableName() string {
	return "key_batches"
}
