package repository

import (
	"errors"

	"github.com/ghost-toolkit/internal/models"

	"gorm.io/gorm"
)

// SpinRecordRepository 抽奖记录仓储接口
type SpinRecordRepository interface {
	Create(record *models.SpinRecord) error
	List(filter SpinRecordListFilter) ([]models.SpinRecord, int64, error)
}

// GormSpinRecordRepository GORM 抽奖记录仓储实现
type GormSpinRecordRepository struct {
	db *gorm.DB
}

// NewSpinRecordRepository 创建抽奖记录仓储
func NewSpinRecordRepository(db *gorm.DB) *GormSpinRecordRepository {
	return &GormSpinRecordRepository{db: db}
}

// WithTx 绑定事务
func (r *GormSpinRecordRepository) WithTx(tx *gorm.DB) *GormSpinRecordRepository {
	if tx == nil {
		return r
	}
	return &GormSpinRecordRepository{db: tx}
}

// Create 写入抽奖记录
func (r *GormSpinRecordRepository) Create(record *models.SpinRecord) error {
	if record == nil || record.UID == 0 {
		return errors.New("invalid spin record")
	}
	return r.db.Create(record).Error
}

// List 查询抽奖记录
func (r *GormSpinRecordRepository) List(filter SpinRecordListFilter) ([]models.SpinRecord, int64, error) {
	query := r.db.Model(&models.SpinRecord{})
	if filter.UID > 0 {
		query = query.Where("uid = ?", filter.UID)
	}
	if filter.Won != nil {
		query = query.Where("won = ?", *filter.Won)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var records []models.SpinRecord
	if err := query.Preload("Prize").Order("id desc").Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
