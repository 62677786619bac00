package repository

import (
	"errors"
	"time"

	"github.com/ghost-toolkit/internal/models"

	"gorm.io/gorm"
)

// AdminRepository 管理员数据访问接口
type AdminRepository interface {
	GetByUsername(username string) (*models.Admin, error)
	GetByID(id uint) (*models.Admin, error)
	TouchLastLogin(id uint, at time.Time) error
	RotateCredentials(id uint, passwordHash string, expectedVersion uint64) (bool, error)
}

// GormAdminRepository GORM 实现
type GormAdminRepository struct {
	db *gorm.DB
}

// NewAdminRepository 创建管理员仓库
func NewAdminRepository(db *gorm.DB) *GormAdminRepository {
	return &GormAdminRepository{db: db}
}

// GetByUsername 根据用户名获取管理员，不存在时返回 nil
func (r *GormAdminRepository) GetByUsername(username string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.Where("username = ?", username).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// GetByID 根据 ID 获取管理员，不存在时返回 nil
func (r *GormAdminRepository) GetByID(id uint) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.First(&admin, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// TouchLastLogin 记录最后登录时间
func (r *GormAdminRepository) TouchLastLogin(id uint, at time.Time) error {
	return r.db.Model(&models.Admin{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"last_login_at": at, "updated_at": at}).Error
}

// RotateCredentials 以 token_version 为条件更新密码并递增版本，版本已变化时返回 false
func (r *GormAdminRepository) RotateCredentials(id uint, passwordHash string, expectedVersion uint64) (bool, error) {
	result := r.db.Model(&models.Admin{}).
		Where("id = ? AND token_version = ?", id, expectedVersion).
		Updates(map[string]interface{}{
			"password_hash": passwordHash,
			"token_version": gorm.Expr("token_version + ?", 1),
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
