package service

import (
	"time"

	"github.com/ghost-toolkit/internal/models"
	"github.com/ghost-toolkit/internal/repository"
)

// AccountLedger 账户变更入口，账户仅通过此处修改
type AccountLedger struct {
	accounts repository.AccountRepository
}

// NewAccountLedger 创建账户账本
func NewAccountLedger(accounts repository.AccountRepository) *AccountLedger {
	return &AccountLedger{accounts: accounts}
}

// Load 加锁读取账户快照
func (l *AccountLedger) Load(uid uint) (*models.Account, error) {
	account, err := l.accounts.GetByUIDForUpdate(uid)
	if err != nil {
		return nil, storeErr("load account", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// Apply 读取账户、应用变更并按版本号写回，返回写回后的账户
func (l *AccountLedger) Apply(uid uint, update EntitlementUpdate) (*models.Account, error) {
	account, err := l.Load(uid)
	if err != nil {
		return nil, err
	}
	return l.ApplyTo(account, update)
}

// ApplyTo 在已加锁读取的账户快照上应用变更
func (l *AccountLedger) ApplyTo(account *models.Account, update EntitlementUpdate) (*models.Account, error) {
	if account == nil {
		return nil, ErrAccountNotFound
	}
	next := *account
	next.History = nil

	balance := next.SpinBalance + update.BalanceDelta
	if balance < 0 {
		return nil, ErrInsufficientBalance
	}
	next.SpinBalance = balance

	if update.BindHWID != "" {
		if next.HasHWID() {
			if *next.HWID != update.BindHWID {
				return nil, ErrHwidMismatch
			}
		} else {
			hwid := update.BindHWID
			next.HWID = &hwid
		}
	}
	if update.Expiration != nil {
		expiration := *update.Expiration
		next.KeyExpiration = &expiration
	}

	if update.IsZero() {
		return &next, nil
	}

	ok, err := l.accounts.UpdateWithVersion(&next, account.Version)
	if err != nil {
		return nil, storeErr("update account", err)
	}
	if !ok {
		return nil, ErrAccountConflict
	}

	if update.History != nil {
		redeemedAt := update.RedeemedAt
		if redeemedAt.IsZero() {
			redeemedAt = time.Now()
		}
		entry := &models.RedemptionEntry{
			UID:        next.UID,
			KeyID:      update.History.KeyID,
			Class:      update.History.Class,
			Code:       update.History.Code,
			RedeemedAt: redeemedAt,
		}
		if err := l.accounts.AppendHistory(entry); err != nil {
			return nil, storeErr("append history", err)
		}
	}
	return &next, nil
}
