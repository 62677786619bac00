package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/ghost-toolkit/internal/constants"
	"github.com/ghost-toolkit/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccessKeyRepository 访问密钥仓储接口
type AccessKeyRepository interface {
	FindCandidates(filter KeyCandidateFilter) ([]models.AccessKey, error)
	MarkRedeemed(id uint, uid *uint, redeemedAt time.Time) (bool, error)
	CreateBatch(batch *models.KeyBatch, keys []models.AccessKey) error
	GetByID(id uint) (*models.AccessKey, error)
	GetBatchByNo(batchNo string) (*models.KeyBatch, error)
	GetBatchByID(id uint) (*models.KeyBatch, error)
	AddKeysToBatch(batchID uint, keys []models.AccessKey) error
	UpdateBatchStatus(batchID uint, status, reason string) error
	ListStaleBatches(status string, updatedBefore time.Time, limit int) ([]models.KeyBatch, error)
	List(filter AccessKeyListFilter) ([]models.AccessKey, int64, error)
}

// GormAccessKeyRepository GORM 访问密钥仓储实现
type GormAccessKeyRepository struct {
	db *gorm.DB
}

// NewAccessKeyRepository 创建访问密钥仓储
func NewAccessKeyRepository(db *gorm.DB) *GormAccessKeyRepository {
	return &GormAccessKeyRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAccessKeyRepository) WithTx(tx *gorm.DB) *GormAccessKeyRepository {
	if tx == nil {
		return r
	}
	return &GormAccessKeyRepository{db: tx}
}

// FindCandidates 查询可兑换的候选密钥（未兑换、已发布），按 ID 升序
func (r *GormAccessKeyRepository) FindCandidates(filter KeyCandidateFilter) ([]models.AccessKey, error) {
	code := strings.TrimSpace(filter.Code)
	if code == "" {
		return []models.AccessKey{}, nil
	}
	query := r.db.Model(&models.AccessKey{}).
		Where("code = ? AND state = ? AND published = ?", code, constants.KeyStateActive, true)
	if subscriptionType := strings.TrimSpace(filter.SubscriptionType); subscriptionType != "" {
		query = query.Where("subscription_type = ?", subscriptionType)
	}
	if filter.ForUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var keys []models.AccessKey
	if err := query.Order("id asc").Find(&keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

// MarkRedeemed 以 state 作为比较条件将密钥标记为已兑换，返回是否抢占成功
func (r *GormAccessKeyRepository) MarkRedeemed(id uint, uid *uint, redeemedAt time.Time) (bool, error) {
	if id == 0 {
		return false, nil
	}
	result := r.db.Model(&models.AccessKey{}).
		Where("id = ? AND state = ?", id, constants.KeyStateActive).
		Updates(map[string]interface{}{
			"state":        constants.KeyStateRedeemed,
			"published":    false,
			"redeemed_uid": uid,
			"redeemed_at":  redeemedAt,
			"updated_at":   redeemedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// CreateBatch 创建密钥批次与密钥
func (r *GormAccessKeyRepository) CreateBatch(batch *models.KeyBatch, keys []models.AccessKey) error {
	if batch == nil {
		return errors.New("invalid key batch")
	}
	if err := r.db.Create(batch).Error; err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	for idx := range keys {
		keys[idx].BatchID = &batch.ID
	}
	return r.db.CreateInBatches(&keys, 500).Error
}

// AddKeysToBatch 向已存在的批次写入密钥
func (r *GormAccessKeyRepository) AddKeysToBatch(batchID uint, keys []models.AccessKey) error {
	if batchID == 0 {
		return errors.New("invalid key batch")
	}
	if len(keys) == 0 {
		return nil
	}
	for idx := range keys {
		keys[idx].BatchID = &batchID
	}
	return r.db.CreateInBatches(&keys, 500).Error
}

// UpdateBatchStatus 更新批次状态
func (r *GormAccessKeyRepository) UpdateBatchStatus(batchID uint, status, reason string) error {
	if batchID == 0 {
		return errors.New("invalid key batch")
	}
	return r.db.Model(&models.KeyBatch{}).
		Where("id = ?", batchID).
		Updates(map[string]interface{}{
			"status":     status,
			"error":      reason,
			"updated_at": time.Now(),
		}).Error
}

// GetBatchByID 根据 ID 查询批次
func (r *GormAccessKeyRepository) GetBatchByID(id uint) (*models.KeyBatch, error) {
	if id == 0 {
		return nil, nil
	}
	var batch models.KeyBatch
	if err := r.db.First(&batch, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &batch, nil
}

// GetByID 根据 ID 查询密钥
func (r *GormAccessKeyRepository) GetByID(id uint) (*models.AccessKey, error) {
	if id == 0 {
		return nil, nil
	}
	var key models.AccessKey
	if err := r.db.Preload("Batch").First(&key, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &key, nil
}

// ListStaleBatches 查询指定状态且长时间未更新的批次
func (r *GormAccessKeyRepository) ListStaleBatches(status string, updatedBefore time.Time, limit int) ([]models.KeyBatch, error) {
	if limit <= 0 {
		limit = 20
	}
	var batches []models.KeyBatch
	if err := r.db.Where("status = ? AND updated_at < ?", status, updatedBefore).
		Order("id asc").
		Limit(limit).
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// GetBatchByNo 根据批次号查询批次
func (r *GormAccessKeyRepository) GetBatchByNo(batchNo string) (*models.KeyBatch, error) {
	batchNo = strings.TrimSpace(strings.ToUpper(batchNo))
	if batchNo == "" {
		return nil, nil
	}
	var batch models.KeyBatch
	if err := r.db.Where("batch_no = ?", batchNo).First(&batch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &batch, nil
}

// List 查询密钥列表
func (r *GormAccessKeyRepository) List(filter AccessKeyListFilter) ([]models.AccessKey, int64, error) {
	query := r.db.Model(&models.AccessKey{})
	if code := strings.TrimSpace(strings.ToUpper(filter.Code)); code != "" {
		query = query.Where("access_keys.code LIKE ?", "%"+code+"%")
	}
	if state := strings.TrimSpace(filter.State); state != "" {
		query = query.Where("access_keys.state = ?", state)
	}
	if subscriptionType := strings.TrimSpace(filter.SubscriptionType); subscriptionType != "" {
		query = query.Where("access_keys.subscription_type = ?", subscriptionType)
	}
	if batchNo := strings.TrimSpace(strings.ToUpper(filter.BatchNo)); batchNo != "" {
		query = query.Joins("LEFT JOIN key_batches ON key_batches.id = access_keys.batch_id").
			Where("key_batches.batch_no = ?", batchNo)
	}
	if filter.RedeemedUID > 0 {
		query = query.Where("access_keys.redeemed_uid = ?", filter.RedeemedUID)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("access_keys.created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("access_keys.created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var keys []models.AccessKey
	if err := query.Preload("Batch").Order("access_keys.id desc").Find(&keys).Error; err != nil {
		return nil, 0, err
	}
	return keys, total, nil
}
