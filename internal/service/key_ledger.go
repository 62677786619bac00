package service

import (
	"time"

	"github.com/ghost-toolkit/internal/models"
	"github.com/ghost-toolkit/internal/repository"
)

// KeyPredicate 候选密钥筛选条件
type KeyPredicate struct {
	SubscriptionType string
}

// RedeemedKey 兑换成功的密钥信息
type RedeemedKey struct {
	ID               uint
	Class            string
	Code             string
	SubscriptionType string
	RedeemedAt       time.Time
}

// KeyLedger 密钥账本，保证每个密钥至多兑换一次
type KeyLedger struct {
	keys repository.AccessKeyRepository
}

// NewKeyLedger 创建密钥账本
func NewKeyLedger(keys repository.AccessKeyRepository) *KeyLedger {
	return &KeyLedger{keys: keys}
}

// Match 在候选集合中查找第一个与兑换码相同的密钥，不做修改
func (l *KeyLedger) Match(predicate KeyPredicate, code string) (*models.AccessKey, error) {
	candidates, err := l.keys.FindCandidates(repository.KeyCandidateFilter{
		Code:             code,
		SubscriptionType: predicate.SubscriptionType,
		ForUpdate:        true,
	})
	if err != nil {
		return nil, storeErr("find key candidates", err)
	}
	for i := range candidates {
		if candidates[i].Code == code {
			return &candidates[i], nil
		}
	}
	return nil, ErrKeyNotFound
}

// Consume 将密钥由 active 置为 redeemed，比较失败视为已被他人兑换
func (l *KeyLedger) Consume(key *models.AccessKey, uid *uint, now time.Time) (*RedeemedKey, error) {
	if key == nil {
		return nil, ErrKeyNotFound
	}
	ok, err := l.keys.MarkRedeemed(key.ID, uid, now)
	if err != nil {
		return nil, storeErr("mark key redeemed", err)
	}
	if !ok {
		return nil, ErrKeyNotFound
	}
	return &RedeemedKey{
		ID:               key.ID,
		Class:            key.Class,
		Code:             key.Code,
		SubscriptionType: key.SubscriptionType,
		RedeemedAt:       now,
	}, nil
}

// Redeem 匹配并消费密钥
func (l *KeyLedger) Redeem(predicate KeyPredicate, code string, uid *uint, now time.Time) (*RedeemedKey, error) {
	key, err := l.Match(predicate, code)
	if err != nil {
		return nil, err
	}
	return l.Consume(key, uid, now)
}
