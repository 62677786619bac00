package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store 仓储聚合入口，事务内返回绑定同一事务的仓储
type Store interface {
	Keys() AccessKeyRepository
	Accounts() AccountRepository
	Prizes() PrizeRepository
	SpinRecords() SpinRecordRepository
	Admins() AdminRepository
	WithContext(ctx context.Context) Store
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// GormStore GORM 仓储聚合实现
type GormStore struct {
	db          *gorm.DB
	keys        *GormAccessKeyRepository
	accounts    *GormAccountRepository
	prizes      *GormPrizeRepository
	spinRecords *GormSpinRecordRepository
	admins      *GormAdminRepository
}

// NewStore 创建仓储聚合
func NewStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db:          db,
		keys:        NewAccessKeyRepository(db),
		accounts:    NewAccountRepository(db),
		prizes:      NewPrizeRepository(db),
		spinRecords: NewSpinRecordRepository(db),
		admins:      NewAdminRepository(db),
	}
}

// DB 返回底层连接
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

// Keys 访问密钥仓储
func (s *GormStore) Keys() AccessKeyRepository {
	return s.keys
}

// Accounts 权益账户仓储
func (s *GormStore) Accounts() AccountRepository {
	return s.accounts
}

// Prizes 奖品仓储
func (s *GormStore) Prizes() PrizeRepository {
	return s.prizes
}

// SpinRecords 抽奖记录仓储
func (s *GormStore) SpinRecords() SpinRecordRepository {
	return s.spinRecords
}

// Admins 管理员仓储
func (s *GormStore) Admins() AdminRepository {
	return s.admins
}

// WithContext 绑定请求上下文
func (s *GormStore) WithContext(ctx context.Context) Store {
	if ctx == nil {
		return s
	}
	return s.bind(s.db.WithContext(ctx))
}

// Transaction 在单个数据库事务中执行 fn，fn 返回错误时整体回滚
func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	db := s.db
	if ctx != nil {
		db = db.WithContext(ctx)
	}
	return db.Transaction(func(tx *gorm.DB) error {
		return fn(s.bind(tx))
	})
}

func (s *GormStore) bind(db *gorm.DB) *GormStore {
	return &GormStore{
		db:          db,
		keys:        s.keys.WithTx(db),
		accounts:    s.accounts.WithTx(db),
		prizes:      s.prizes.WithTx(db),
		spinRecords: s.spinRecords.WithTx(db),
		admins:      NewAdminRepository(db),
	}
}
