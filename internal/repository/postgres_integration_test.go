//go:build integration
// +build integration

package repository

import (
	"context"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ghost-toolkit/internal/constants"
	"github.com/ghost-toolkit/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.SpinRecord{},
		&models.Prize{},
		&models.RedemptionEntry{},
		&models.Account{},
		&models.AccessKey{},
		&models.KeyBatch{},
		&models.Admin{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestPostgresConcurrentKeyConsumeIsAtMostOnce(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	store := NewStore(db)

	key := &models.AccessKey{
		Title:            constants.KeyTitleMonth,
		Class:            constants.KeyClassMonth,
		Code:             "GHOST-PG-CONCURRENT",
		State:            constants.KeyStateActive,
		Published:        true,
		SubscriptionType: constants.SubscriptionTypeToolkit,
	}
	if err := db.Create(key).Error; err != nil {
		t.Fatalf("create key failed: %v", err)
	}

	const workers = 24
	var wins int32
	var wg sync.WaitGroup
	for i := 1; i <= workers; i++ {
		wg.Add(1)
		go func(uid uint) {
			defer wg.Done()
			err := store.Transaction(context.Background(), func(tx Store) error {
				candidates, err := tx.Keys().FindCandidates(KeyCandidateFilter{
					Code:             key.Code,
					SubscriptionType: constants.SubscriptionTypeToolkit,
					ForUpdate:        true,
				})
				if err != nil || len(candidates) == 0 {
					return err
				}
				ok, err := tx.Keys().MarkRedeemed(candidates[0].ID, &uid, time.Now())
				if err != nil {
					return err
				}
				if ok {
					atomic.AddInt32(&wins, 1)
				}
				return nil
			})
			if err != nil {
				t.Errorf("transaction failed: %v", err)
			}
		}(uint(i))
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("key consumed %d times, want exactly once", wins)
	}
}
