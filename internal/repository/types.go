package repository

import "time"

// KeyCandidateFilter 兑换候选密钥筛选条件
type KeyCandidateFilter struct {
	Code             string
	SubscriptionType string
	ForUpdate        bool
}

// AccessKeyListFilter 查询密钥列表的过滤条件
type AccessKeyListFilter struct {
	Page             int
	PageSize         int
	Code             string
	State            string
	SubscriptionType string
	BatchNo          string
	RedeemedUID      uint
	CreatedFrom      *time.Time
	CreatedTo        *time.Time
}

// AccountListFilter 查询账户列表的过滤条件
type AccountListFilter struct {
	Page     int
	PageSize int
	HWID     string
}

// PrizeListFilter 查询奖品列表的过滤条件
type PrizeListFilter struct {
	Page     int
	PageSize int
	Name     string
	State    string
}

// SpinRecordListFilter 查询抽奖记录的过滤条件
type SpinRecordListFilter struct {
	Page        int
	PageSize    int
	UID         uint
	Won         *bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
