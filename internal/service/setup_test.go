package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/ghost-toolkit/internal/constants"
	"github.com/ghost-toolkit/internal/models"
	"github.com/ghost-toolkit/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupStore(t *testing.T) (*repository.GormStore, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:ghost_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return repository.NewStore(db), db
}

func seedAccount(t *testing.T, db *gorm.DB, uid uint, balance int64, hwid string) {
	t.Helper()
	account := models.Account{UID: uid, SpinBalance: balance}
	if hwid != "" {
		account.HWID = &hwid
	}
	if err := db.Create(&account).Error; err != nil {
		t.Fatalf("create account failed: %v", err)
	}
}

func seedKey(t *testing.T, db *gorm.DB, code, class, subscriptionType string) models.AccessKey {
	t.Helper()
	key := models.AccessKey{
		Title:            "seed",
		Class:            class,
		Code:             code,
		State:            constants.KeyStateActive,
		Published:        true,
		SubscriptionType: subscriptionType,
	}
	if err := db.Create(&key).Error; err != nil {
		t.Fatalf("create key failed: %v", err)
	}
	return key
}

func seedPrize(t *testing.T, db *gorm.DB, name, payoutKey, payoutValue string) models.Prize {
	t.Helper()
	prize := models.Prize{
		Name:        name,
		PayoutKey:   payoutKey,
		PayoutValue: payoutValue,
		State:       constants.PrizeStateActive,
		Published:   true,
	}
	if err := db.Create(&prize).Error; err != nil {
		t.Fatalf("create prize failed: %v", err)
	}
	return prize
}

func loadAccount(t *testing.T, db *gorm.DB, uid uint) models.Account {
	t.Helper()
	var account models.Account
	if err := db.Where("uid = ?", uid).First(&account).Error; err != nil {
		t.Fatalf("load account failed: %v", err)
	}
	return account
}

func loadKey(t *testing.T, db *gorm.DB, id uint) models.AccessKey {
	t.Helper()
	var key models.AccessKey
	if err := db.First(&key, id).Error; err != nil {
		t.Fatalf("load key failed: %v", err)
	}
	return key
}
