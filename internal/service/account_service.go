package service

import (
	"context"
	"strings"
	"time"

	"github.com/ghost-toolkit/internal/models"
	"github.com/ghost-toolkit/internal/repository"
)

// AccountService 账户管理服务
type AccountService struct {
	store repository.Store
}

// CreateAccountInput 创建账户输入
type CreateAccountInput struct {
	UID         uint
	SpinBalance int64
	HWID        string
}

// AccountDetail 账户详情
type AccountDetail struct {
	Account *models.Account
	Status  string
}

// NewAccountService 创建账户服务
func NewAccountService(store repository.Store) *AccountService {
	return &AccountService{store: store}
}

// CreateAccount 创建权益账户，UID 由外部账户体系分配
func (s *AccountService) CreateAccount(ctx context.Context, input CreateAccountInput) (*models.Account, error) {
	if input.UID == 0 || input.SpinBalance < 0 {
		return nil, ErrAccountInvalid
	}
	var created *models.Account
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		existing, err := tx.Accounts().GetByUID(input.UID)
		if err != nil {
			return storeErr("get account", err)
		}
		if existing != nil {
			return ErrAccountExists
		}
		now := time.Now()
		account := &models.Account{
			UID:         input.UID,
			SpinBalance: input.SpinBalance,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if hwid := strings.TrimSpace(input.HWID); hwid != "" {
			account.HWID = &hwid
		}
		if err := tx.Accounts().Create(account); err != nil {
			return storeErr("create account", err)
		}
		created = account
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetAccount 查询账户及其兑换记录
func (s *AccountService) GetAccount(ctx context.Context, uid uint) (*AccountDetail, error) {
	store := s.store.WithContext(ctx)
	account, err := store.Accounts().GetByUID(uid)
	if err != nil {
		return nil, storeErr("get account", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	history, err := store.Accounts().ListHistory(uid)
	if err != nil {
		return nil, storeErr("list history", err)
	}
	account.History = history
	return &AccountDetail{
		Account: account,
		Status:  SubscriptionStatus(account.KeyExpiration, time.Now()),
	}, nil
}

// ListAccounts 查询账户列表
func (s *AccountService) ListAccounts(ctx context.Context, filter repository.AccountListFilter) ([]models.Account, int64, error) {
	accounts, total, err := s.store.WithContext(ctx).Accounts().List(filter)
	if err != nil {
		return nil, 0, storeErr("list accounts", err)
	}
	return accounts, total, nil
}
