package models

import "time"

// Prize 抽奖奖品
type Prize struct {
	ID          uint       `gorm:"primarykey" json:"id"`                                          // 主键
	Name        string     `gorm:"type:varchar(64);index;not null" json:"name"`                   // 奖品名称
	PayoutKey   string     `gorm:"type:varchar(191);not null" json:"payout_key"`                  // 兑奖凭证
	PayoutValue string     `gorm:"type:varchar(255);not null" json:"payout_value"`                // 奖品描述
	Amount      *Money     `gorm:"type:decimal(20,2)" json:"amount,omitempty"`                    // 现金奖金额
	State       string     `gorm:"type:varchar(24);index;not null;default:'active'" json:"state"` // 状态
	Published   bool       `gorm:"index;not null;default:true" json:"published"`                  // 是否发布
	AwardedUID  *uint      `gorm:"index" json:"awarded_uid,omitempty"`                            // 中奖账户
	AwardedAt   *time.Time `gorm:"index" json:"awarded_at"`                                       // 中奖时间
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt   time.Time  `json:"updated_at"`                                                    // 更新时间
}

// TableName 指定表名
func (Prize) TableName() string {
	return "prizes"
}

// SpinRecord 抽奖记录（每次抽奖一条）
type SpinRecord struct {
	ID           uint      `gorm:"primarykey" json:"id"`            // 主键
	UID          uint      `gorm:"index;not null" json:"uid"`       // 账户
	PrizeID      *uint     `gorm:"index" json:"prize_id,omitempty"` // 中奖奖品
	Won          bool      `gorm:"index;not null" json:"won"`       // 是否中奖
	BalanceAfter int64     `gorm:"not null" json:"balance_after"`   // 抽奖后余额
	CreatedAt    time.Time `gorm:"index" json:"created_at"`         // 抽奖时间
	Prize        *Prize    `gorm:"foreignKey:PrizeID" json:"prize,omitempty"`
}

// TableName 指定表名
func (SpinRecord) TableName() string {
	return "spin_records"
}
