package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/ghost-toolkit/internal/constants"
	"github.com/ghost-toolkit/internal/models"

	"gorm.io/gorm"
)

// PrizeRepository 奖品仓储接口
type PrizeRepository interface {
	ListActive() ([]models.Prize, error)
	MarkAwarded(id uint, uid uint, awardedAt time.Time) (bool, error)
	Create(prize *models.Prize) error
	GetByID(id uint) (*models.Prize, error)
	List(filter PrizeListFilter) ([]models.Prize, int64, error)
}

// GormPrizeRepository GORM 奖品仓储实现
type GormPrizeRepository struct {
	db *gorm.DB
}

// NewPrizeRepository 创建奖品仓储
func NewPrizeRepository(db *gorm.DB) *GormPrizeRepository {
	return &GormPrizeRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPrizeRepository) WithTx(tx *gorm.DB) *GormPrizeRepository {
	if tx == nil {
		return r
	}
	return &GormPrizeRepository{db: tx}
}

// ListActive 查询奖池中的有效奖品
func (r *GormPrizeRepository) ListActive() ([]models.Prize, error) {
	var prizes []models.Prize
	if err := r.db.Where("state = ? AND published = ?", constants.PrizeStateActive, true).
		Order("id asc").
		Find(&prizes).Error; err != nil {
		return nil, err
	}
	return prizes, nil
}

// MarkAwarded 以 state 作为比较条件发放奖品，返回是否抢占成功
func (r *GormPrizeRepository) MarkAwarded(id uint, uid uint, awardedAt time.Time) (bool, error) {
	if id == 0 {
		return false, nil
	}
	result := r.db.Model(&models.Prize{}).
		Where("id = ? AND state = ?", id, constants.PrizeStateActive).
		Updates(map[string]interface{}{
			"state":       constants.PrizeStateAwarded,
			"published":   false,
			"awarded_uid": uid,
			"awarded_at":  awardedAt,
			"updated_at":  awardedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Create 创建奖品；published 列带默认值，false 需在插入后显式写回
func (r *GormPrizeRepository) Create(prize *models.Prize) error {
	if prize == nil {
		return errors.New("invalid prize")
	}
	published := prize.Published
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(prize).Error; err != nil {
			return err
		}
		if published {
			return nil
		}
		if err := tx.Model(&models.Prize{}).Where("id = ?", prize.ID).Update("published", false).Error; err != nil {
			return err
		}
		prize.Published = false
		return nil
	})
}

// GetByID 根据 ID 查询奖品
func (r *GormPrizeRepository) GetByID(id uint) (*models.Prize, error) {
	if id == 0 {
		return nil, nil
	}
	var prize models.Prize
	if err := r.db.First(&prize, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &prize, nil
}

// List 查询奖品列表
func (r *GormPrizeRepository) List(filter PrizeListFilter) ([]models.Prize, int64, error) {
	query := r.db.Model(&models.Prize{})
	if name := strings.TrimSpace(filter.Name); name != "" {
		query = query.Where("name = ?", name)
	}
	if state := strings.TrimSpace(filter.State); state != "" {
		query = query.Where("state = ?", state)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var prizes []models.Prize
	if err := query.Order("id desc").Find(&prizes).Error; err != nil {
		return nil, 0, err
	}
	return prizes, total, nil
}
