package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/ghost-toolkit/internal/constants"
	"github.com/ghost-toolkit/internal/models"
)

type fakeEnqueuer struct {
	enabled bool
	err     error
	batches []uint
}

func (f *fakeEnqueuer) Enabled() bool {
	return f.enabled
}

func (f *fakeEnqueuer) EnqueueKeyBatchGenerate(batchID uint) error {
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, batchID)
	return nil
}

var batchNoPattern = regexp.MustCompile(`^GKB\d{8}[0-9A-F]{10}$`)

func TestGenerateKeysSync(t *testing.T) {
	store, db := setupStore(t)
	svc := NewKeyService(store, nil, nil, KeyServiceOptions{MaxBatchSize: 50, AsyncThreshold: 20})

	result, err := svc.GenerateKeys(context.Background(), GenerateKeysInput{
		Title: constants.KeyTitleWeek,
		Count: 5,
	})
	if err != nil {
		t.Fatalf("generate keys failed: %v", err)
	}
	if result.Async || len(result.Keys) != 5 {
		t.Fatalf("expected 5 sync keys, got %+v", result)
	}
	if !batchNoPattern.MatchString(result.Batch.BatchNo) {
		t.Fatalf("unexpected batch no: %s", result.Batch.BatchNo)
	}
	if result.Batch.Status != constants.KeyBatchStatusCompleted {
		t.Fatalf("batch status want completed, got %s", result.Batch.Status)
	}
	for _, key := range result.Keys {
		if key.Class != constants.KeyClassWeek || key.SubscriptionType != constants.SubscriptionTypeToolkit {
			t.Fatalf("unexpected key: %+v", key)
		}
		if !strings.HasPrefix(key.Code, constants.KeyCodePrefix) || key.State != constants.KeyStateActive || !key.Published {
			t.Fatalf("unexpected key state: %+v", key)
		}
		if key.BatchID == nil || *key.BatchID != result.Batch.ID {
			t.Fatalf("key should belong to batch")
		}
	}

	var count int64
	if err := db.Model(&models.AccessKey{}).Where("batch_id = ?", result.Batch.ID).Count(&count).Error; err != nil {
		t.Fatalf("count keys failed: %v", err)
	}
	if count != 5 {
		t.Fatalf("stored keys want 5, got %d", count)
	}

	keys, total, err := svc.ListKeys(context.Background(), KeyListInput{BatchNo: result.Batch.BatchNo, Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("list keys failed: %v", err)
	}
	if total != 5 || len(keys) != 2 {
		t.Fatalf("list want total=5 page=2, got total=%d len=%d", total, len(keys))
	}
}

func TestGenerateSpinKeys(t *testing.T) {
	store, _ := setupStore(t)
	svc := NewKeyService(store, nil, nil, KeyServiceOptions{})

	result, err := svc.GenerateKeys(context.Background(), GenerateKeysInput{
		SubscriptionType: constants.SubscriptionTypeSpin,
		SpinCount:        100,
		Count:            2,
	})
	if err != nil {
		t.Fatalf("generate keys failed: %v", err)
	}
	if result.Batch.Title != constants.KeyTitleSpin || result.Batch.Class != "100" {
		t.Fatalf("unexpected batch: %+v", result.Batch)
	}
	if _, err := ParseSpinCount(result.Keys[0].Class); err != nil {
		t.Fatalf("spin key class should be numeric: %v", err)
	}
}

func TestGenerateKeysValidation(t *testing.T) {
	store, _ := setupStore(t)
	svc := NewKeyService(store, nil, nil, KeyServiceOptions{MaxBatchSize: 10})
	ctx := context.Background()

	cases := []struct {
		name  string
		input GenerateKeysInput
		want  error
	}{
		{name: "zero count", input: GenerateKeysInput{Title: constants.KeyTitleDay}, want: ErrKeyBatchInvalid},
		{name: "too large", input: GenerateKeysInput{Title: constants.KeyTitleDay, Count: 11}, want: ErrKeyBatchTooLarge},
		{name: "unknown title", input: GenerateKeysInput{Title: "Year Access", Count: 1}, want: ErrKeyBatchInvalid},
		{name: "spin without count", input: GenerateKeysInput{SubscriptionType: constants.SubscriptionTypeSpin, Count: 1}, want: ErrKeyBatchInvalid},
		{name: "unknown type", input: GenerateKeysInput{Title: constants.KeyTitleDay, SubscriptionType: "lifetime", Count: 1}, want: ErrKeyBatchInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.GenerateKeys(ctx, tc.input); !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
		})
	}
}

func TestGenerateKeysAsyncThenFill(t *testing.T) {
	store, db := setupStore(t)
	enqueuer := &fakeEnqueuer{enabled: true}
	svc := NewKeyService(store, nil, enqueuer, KeyServiceOptions{MaxBatchSize: 100, AsyncThreshold: 3})
	ctx := context.Background()

	result, err := svc.GenerateKeys(ctx, GenerateKeysInput{Title: constants.KeyTitleMonth, Count: 4})
	if err != nil {
		t.Fatalf("generate keys failed: %v", err)
	}
	if !result.Async || len(result.Keys) != 0 || result.Batch.Status != constants.KeyBatchStatusPending {
		t.Fatalf("expected pending async batch, got %+v", result)
	}
	if len(enqueuer.batches) != 1 || enqueuer.batches[0] != result.Batch.ID {
		t.Fatalf("batch should be enqueued once, got %v", enqueuer.batches)
	}

	filled, err := svc.FillBatch(ctx, result.Batch.ID)
	if err != nil {
		t.Fatalf("fill batch failed: %v", err)
	}
	if filled.Status != constants.KeyBatchStatusCompleted {
		t.Fatalf("batch status want completed, got %s", filled.Status)
	}
	// 重复投递不会重复生成
	if _, err := svc.FillBatch(ctx, result.Batch.ID); err != nil {
		t.Fatalf("refill batch failed: %v", err)
	}
	var count int64
	if err := db.Model(&models.AccessKey{}).Where("batch_id = ?", result.Batch.ID).Count(&count).Error; err != nil {
		t.Fatalf("count keys failed: %v", err)
	}
	if count != 4 {
		t.Fatalf("stored keys want 4, got %d", count)
	}

	batch, err := svc.GetBatch(ctx, result.Batch.BatchNo)
	if err != nil {
		t.Fatalf("get batch failed: %v", err)
	}
	if batch.Status != constants.KeyBatchStatusCompleted || batch.Class != constants.KeyClassMonth {
		t.Fatalf("unexpected batch: %+v", batch)
	}
	if _, err := svc.FillBatch(ctx, 9999); !errors.Is(err, ErrKeyBatchInvalid) {
		t.Fatalf("unknown batch want invalid, got %v", err)
	}
}

func TestGenerateKeysAsyncEnqueueFailure(t *testing.T) {
	store, db := setupStore(t)
	enqueuer := &fakeEnqueuer{enabled: true, err: errors.New("redis down")}
	svc := NewKeyService(store, nil, enqueuer, KeyServiceOptions{AsyncThreshold: 2})

	if _, err := svc.GenerateKeys(context.Background(), GenerateKeysInput{Title: constants.KeyTitleDay, Count: 2}); !errors.Is(err, ErrQueueUnavailable) {
		t.Fatalf("expected queue unavailable, got %v", err)
	}
	var batch models.KeyBatch
	if err := db.First(&batch).Error; err != nil {
		t.Fatalf("load batch failed: %v", err)
	}
	if batch.Status != constants.KeyBatchStatusFailed || batch.Error != "redis down" {
		t.Fatalf("batch should be marked failed: %+v", batch)
	}
}

func TestGenerateKeysFallsBackToSyncWhenQueueDisabled(t *testing.T) {
	store, _ := setupStore(t)
	svc := NewKeyService(store, nil, &fakeEnqueuer{enabled: false}, KeyServiceOptions{AsyncThreshold: 1})

	result, err := svc.GenerateKeys(context.Background(), GenerateKeysInput{Title: constants.KeyTitleDay, Count: 3})
	if err != nil {
		t.Fatalf("generate keys failed: %v", err)
	}
	if result.Async || len(result.Keys) != 3 {
		t.Fatalf("expected sync generation, got %+v", result)
	}
}

func TestRecoverStaleBatches(t *testing.T) {
	store, db := setupStore(t)
	svc := NewKeyService(store, nil, &fakeEnqueuer{enabled: true}, KeyServiceOptions{AsyncThreshold: 1})
	ctx := context.Background()

	stale, err := svc.GenerateKeys(ctx, GenerateKeysInput{Title: constants.KeyTitleDay, Count: 2})
	if err != nil {
		t.Fatalf("generate stale batch failed: %v", err)
	}
	fresh, err := svc.GenerateKeys(ctx, GenerateKeysInput{Title: constants.KeyTitleDay, Count: 2})
	if err != nil {
		t.Fatalf("generate fresh batch failed: %v", err)
	}
	if err := db.Model(&models.KeyBatch{}).Where("id = ?", stale.Batch.ID).
		Update("updated_at", time.Now().Add(-time.Hour)).Error; err != nil {
		t.Fatalf("age batch failed: %v", err)
	}

	recovered, err := svc.RecoverStaleBatches(ctx, 10*time.Minute)
	if err != nil {
		t.Fatalf("recover failed: %v", err)
	}
	if recovered != 1 {
		t.Fatalf("want 1 recovered batch, got %d", recovered)
	}
	var staleBatch, freshBatch models.KeyBatch
	if err := db.First(&staleBatch, stale.Batch.ID).Error; err != nil {
		t.Fatalf("load stale batch failed: %v", err)
	}
	if err := db.First(&freshBatch, fresh.Batch.ID).Error; err != nil {
		t.Fatalf("load fresh batch failed: %v", err)
	}
	if staleBatch.Status != constants.KeyBatchStatusCompleted || freshBatch.Status != constants.KeyBatchStatusPending {
		t.Fatalf("unexpected statuses: stale=%s fresh=%s", staleBatch.Status, freshBatch.Status)
	}
}
