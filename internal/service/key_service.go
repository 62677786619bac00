package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ghost-toolkit/internal/constants"
	"github.com/ghost-toolkit/internal/logger"
	"github.com/ghost-toolkit/internal/metrics"
	"github.com/ghost-toolkit/internal/models"
	"github.com/ghost-toolkit/internal/repository"

	"github.com/google/uuid"
)

const staleBatchRecoverLimit = 20

// KeyBatchEnqueuer 异步生成任务投递
type KeyBatchEnqueuer interface {
	Enabled() bool
	EnqueueKeyBatchGenerate(batchID uint) error
}

// KeyService 访问密钥管理服务
type KeyService struct {
	store          repository.Store
	codec          *KeyCodec
	enqueuer       KeyBatchEnqueuer
	maxBatchSize   int
	asyncThreshold int
}

// KeyServiceOptions 密钥服务配置
type KeyServiceOptions struct {
	MaxBatchSize   int
	AsyncThreshold int
}

// GenerateKeysInput 批量生成密钥输入
type GenerateKeysInput struct {
	Title            string
	SubscriptionType string
	SpinCount        int
	Count            int
	CreatedBy        *uint
}

// GenerateKeysResult 批量生成结果，Async 为 true 时 Keys 为空
type GenerateKeysResult struct {
	Batch *models.KeyBatch
	Keys  []models.AccessKey
	Async bool
}

// KeyListInput 密钥列表输入
type KeyListInput struct {
	Code             string
	State            string
	SubscriptionType string
	BatchNo          string
	RedeemedUID      uint
	CreatedFrom      *time.Time
	CreatedTo        *time.Time
	Page             int
	PageSize         int
}

// NewKeyService 创建密钥服务
func NewKeyService(store repository.Store, codec *KeyCodec, enqueuer KeyBatchEnqueuer, opts KeyServiceOptions) *KeyService {
	if codec == nil {
		codec = NewKeyCodec()
	}
	if opts.MaxBatchSize <= 0 {
		opts.MaxBatchSize = constants.DefaultKeyMaxBatchSize
	}
	if opts.AsyncThreshold <= 0 {
		opts.AsyncThreshold = constants.DefaultKeyAsyncThreshold
	}
	return &KeyService{
		store:          store,
		codec:          codec,
		enqueuer:       enqueuer,
		maxBatchSize:   opts.MaxBatchSize,
		asyncThreshold: opts.AsyncThreshold,
	}
}

// resolveKeyClass 由标题与订阅类型推导密钥等级
func resolveKeyClass(input GenerateKeysInput) (title, class, subscriptionType string, err error) {
	subscriptionType = strings.TrimSpace(input.SubscriptionType)
	if subscriptionType == "" {
		subscriptionType = constants.SubscriptionTypeToolkit
	}
	title = strings.TrimSpace(input.Title)

	switch subscriptionType {
	case constants.SubscriptionTypeSpin:
		if input.SpinCount <= 0 {
			return "", "", "", ErrKeyBatchInvalid
		}
		if title == "" {
			title = constants.KeyTitleSpin
		}
		return title, strconv.Itoa(input.SpinCount), subscriptionType, nil
	case constants.SubscriptionTypeToolkit, constants.SubscriptionTypePlain:
		switch title {
		case constants.KeyTitleDay:
			return title, constants.KeyClassDay, subscriptionType, nil
		case constants.KeyTitleWeek:
			return title, constants.KeyClassWeek, subscriptionType, nil
		case constants.KeyTitleMonth:
			return title, constants.KeyClassMonth, subscriptionType, nil
		}
	}
	return "", "", "", ErrKeyBatchInvalid
}

// GenerateKeys 生成密钥批次；数量达到异步阈值且队列可用时转入后台任务
func (s *KeyService) GenerateKeys(ctx context.Context, input GenerateKeysInput) (*GenerateKeysResult, error) {
	if input.Count <= 0 {
		return nil, ErrKeyBatchInvalid
	}
	if input.Count > s.maxBatchSize {
		return nil, ErrKeyBatchTooLarge
	}
	title, class, subscriptionType, err := resolveKeyClass(input)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	batch := &models.KeyBatch{
		BatchNo:          generateKeyBatchNo(now),
		Title:            title,
		Class:            class,
		SubscriptionType: subscriptionType,
		Quantity:         input.Count,
		Status:           constants.KeyBatchStatusPending,
		CreatedBy:        input.CreatedBy,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if input.Count >= s.asyncThreshold && s.enqueuer != nil && s.enqueuer.Enabled() {
		if err := s.store.WithContext(ctx).Keys().CreateBatch(batch, nil); err != nil {
			return nil, storeErr("create key batch", err)
		}
		if err := s.enqueuer.EnqueueKeyBatchGenerate(batch.ID); err != nil {
			logger.Errorw("key_batch_enqueue_failed", "batch_no", batch.BatchNo, "error", err)
			s.markBatchFailed(ctx, batch.ID, err)
			return nil, ErrQueueUnavailable
		}
		logger.Infow("key_batch_enqueued", "batch_no", batch.BatchNo, "count", input.Count)
		return &GenerateKeysResult{Batch: batch, Async: true}, nil
	}

	keys, err := s.buildKeys(batch, now)
	if err != nil {
		return nil, err
	}
	batch.Status = constants.KeyBatchStatusCompleted
	if err := s.store.Transaction(ctx, func(tx repository.Store) error {
		return tx.Keys().CreateBatch(batch, keys)
	}); err != nil {
		return nil, storeErr("create key batch", err)
	}
	metrics.AddKeysGenerated(subscriptionType, len(keys))
	logger.Infow("key_batch_generated", "batch_no", batch.BatchNo, "count", len(keys), "class", class)
	return &GenerateKeysResult{Batch: batch, Keys: keys}, nil
}

// FillBatch 为待生成批次写入密钥，供后台任务调用；已完成批次直接跳过
func (s *KeyService) FillBatch(ctx context.Context, batchID uint) (*models.KeyBatch, error) {
	var filled *models.KeyBatch
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		batch, err := tx.Keys().GetBatchByID(batchID)
		if err != nil {
			return storeErr("get key batch", err)
		}
		if batch == nil {
			return ErrKeyBatchInvalid
		}
		filled = batch
		if batch.Status != constants.KeyBatchStatusPending {
			return nil
		}
		keys, err := s.buildKeys(batch, time.Now())
		if err != nil {
			return err
		}
		if err := tx.Keys().AddKeysToBatch(batch.ID, keys); err != nil {
			return storeErr("add keys to batch", err)
		}
		if err := tx.Keys().UpdateBatchStatus(batch.ID, constants.KeyBatchStatusCompleted, ""); err != nil {
			return storeErr("update key batch status", err)
		}
		batch.Status = constants.KeyBatchStatusCompleted
		metrics.AddKeysGenerated(batch.SubscriptionType, len(keys))
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrKeyBatchInvalid) {
			s.markBatchFailed(ctx, batchID, err)
		}
		return nil, err
	}
	return filled, nil
}

// RecoverStaleBatches 补写长时间停留在 pending 的批次，返回补写成功的数量
func (s *KeyService) RecoverStaleBatches(ctx context.Context, staleAfter time.Duration) (int, error) {
	batches, err := s.store.WithContext(ctx).Keys().ListStaleBatches(constants.KeyBatchStatusPending, time.Now().Add(-staleAfter), staleBatchRecoverLimit)
	if err != nil {
		return 0, storeErr("list stale key batches", err)
	}
	recovered := 0
	for _, batch := range batches {
		if _, err := s.FillBatch(ctx, batch.ID); err != nil {
			logger.Warnw("key_batch_recover_failed", "batch_no", batch.BatchNo, "error", err)
			continue
		}
		logger.Infow("key_batch_recovered", "batch_no", batch.BatchNo, "count", batch.Quantity)
		recovered++
	}
	return recovered, nil
}

// ListKeys 查询密钥列表
func (s *KeyService) ListKeys(ctx context.Context, input KeyListInput) ([]models.AccessKey, int64, error) {
	keys, total, err := s.store.WithContext(ctx).Keys().List(repository.AccessKeyListFilter{
		Page:             input.Page,
		PageSize:         input.PageSize,
		Code:             input.Code,
		State:            strings.TrimSpace(strings.ToLower(input.State)),
		SubscriptionType: strings.TrimSpace(input.SubscriptionType),
		BatchNo:          input.BatchNo,
		RedeemedUID:      input.RedeemedUID,
		CreatedFrom:      input.CreatedFrom,
		CreatedTo:        input.CreatedTo,
	})
	if err != nil {
		return nil, 0, storeErr("list keys", err)
	}
	return keys, total, nil
}

// GetBatch 按批次号查询
func (s *KeyService) GetBatch(ctx context.Context, batchNo string) (*models.KeyBatch, error) {
	batch, err := s.store.WithContext(ctx).Keys().GetBatchByNo(batchNo)
	if err != nil {
		return nil, storeErr("get key batch", err)
	}
	if batch == nil {
		return nil, ErrKeyBatchInvalid
	}
	return batch, nil
}

func (s *KeyService) buildKeys(batch *models.KeyBatch, now time.Time) ([]models.AccessKey, error) {
	keys := make([]models.AccessKey, 0, batch.Quantity)
	for i := 0; i < batch.Quantity; i++ {
		code, err := s.codec.Generate()
		if err != nil {
			return nil, fmt.Errorf("generate key failed: %w", err)
		}
		keys = append(keys, models.AccessKey{
			Title:            batch.Title,
			Class:            batch.Class,
			Code:             code,
			State:            constants.KeyStateActive,
			Published:        true,
			SubscriptionType: batch.SubscriptionType,
			CreatedAt:        now,
			UpdatedAt:        now,
		})
	}
	return keys, nil
}

func (s *KeyService) markBatchFailed(ctx context.Context, batchID uint, cause error) {
	message := cause.Error()
	if len(message) > 255 {
		message = message[:255]
	}
	if err := s.store.WithContext(ctx).Keys().UpdateBatchStatus(batchID, constants.KeyBatchStatusFailed, message); err != nil {
		logger.Warnw("key_batch_mark_failed_error", "batch_id", batchID, "error", err)
	}
}

func generateKeyBatchNo(now time.Time) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return constants.KeyBatchNoPrefix + now.Format("20060102") + strings.ToUpper(id[:10])
}
