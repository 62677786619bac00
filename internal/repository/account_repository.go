package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/ghost-toolkit/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccountRepository 权益账户仓储接口
type AccountRepository interface {
	GetByUID(uid uint) (*models.Account, error)
	GetByUIDForUpdate(uid uint) (*models.Account, error)
	Create(account *models.Account) error
	UpdateWithVersion(account *models.Account, expectedVersion uint64) (bool, error)
	AppendHistory(entry *models.RedemptionEntry) error
	ListHistory(uid uint) ([]models.RedemptionEntry, error)
	List(filter AccountListFilter) ([]models.Account, int64, error)
}

// GormAccountRepository GORM 权益账户仓储实现
type GormAccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository 创建权益账户仓储
func NewAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAccountRepository) WithTx(tx *gorm.DB) *GormAccountRepository {
	if tx == nil {
		return r
	}
	return &GormAccountRepository{db: tx}
}

// GetByUID 查询账户
func (r *GormAccountRepository) GetByUID(uid uint) (*models.Account, error) {
	return r.getByUID(r.db, uid)
}

// GetByUIDForUpdate 加锁查询账户
func (r *GormAccountRepository) GetByUIDForUpdate(uid uint) (*models.Account, error) {
	return r.getByUID(r.db.Clauses(clause.Locking{Strength: "UPDATE"}), uid)
}

func (r *GormAccountRepository) getByUID(query *gorm.DB, uid uint) (*models.Account, error) {
	if uid == 0 {
		return nil, nil
	}
	var account models.Account
	if err := query.Where("uid = ?", uid).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// Create 创建账户
func (r *GormAccountRepository) Create(account *models.Account) error {
	if account == nil || account.UID == 0 {
		return errors.New("invalid account")
	}
	return r.db.Create(account).Error
}

// UpdateWithVersion 按版本号条件更新账户，成功时 account.Version 递增
func (r *GormAccountRepository) UpdateWithVersion(account *models.Account, expectedVersion uint64) (bool, error) {
	if account == nil || account.UID == 0 {
		return false, errors.New("invalid account")
	}
	now := time.Now()
	result := r.db.Model(&models.Account{}).
		Where("uid = ? AND version = ?", account.UID, expectedVersion).
		Updates(map[string]interface{}{
			"spin_balance":   account.SpinBalance,
			"hwid":           account.HWID,
			"key_expiration": account.KeyExpiration,
			"version":        expectedVersion + 1,
			"updated_at":     now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected != 1 {
		return false, nil
	}
	account.Version = expectedVersion + 1
	account.UpdatedAt = now
	return true, nil
}

// AppendHistory 追加兑换记录
func (r *GormAccountRepository) AppendHistory(entry *models.RedemptionEntry) error {
	if entry == nil || entry.UID == 0 {
		return errors.New("invalid redemption entry")
	}
	return r.db.Create(entry).Error
}

// ListHistory 按兑换顺序查询账户兑换记录
func (r *GormAccountRepository) ListHistory(uid uint) ([]models.RedemptionEntry, error) {
	var entries []models.RedemptionEntry
	if uid == 0 {
		return entries, nil
	}
	if err := r.db.Where("uid = ?", uid).Order("id asc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// List 查询账户列表
func (r *GormAccountRepository) List(filter AccountListFilter) ([]models.Account, int64, error) {
	query := r.db.Model(&models.Account{})
	if hwid := strings.TrimSpace(filter.HWID); hwid != "" {
		query = query.Where("hwid = ?", hwid)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var accounts []models.Account
	if err := query.Order("uid asc").Find(&accounts).Error; err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}
