package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ghost-toolkit/internal/constants"
	"github.com/ghost-toolkit/internal/models"
	"github.com/ghost-toolkit/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const scenarioCode = "GHOST-AAAAAAAA-BBBB-CCCC-DDDD-EEEEEEEEEEEE"

func newRedemptionServiceForTest(t *testing.T, now time.Time) (*RedemptionService, *gorm.DB) {
	t.Helper()
	store, db := setupStore(t)
	svc := NewRedemptionService(store, NewPrizeDrawEngine(constants.DefaultDrawDilution, nil))
	svc.SetClock(func() time.Time { return now })
	return svc, db
}

func TestRedeemSubscriptionKeyScenario(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	svc, db := newRedemptionServiceForTest(t, now)
	seedAccount(t, db, 42, 0, "")
	first := seedKey(t, db, scenarioCode, constants.KeyClassMonth, constants.SubscriptionTypeToolkit)
	second := seedKey(t, db, "GHOST-11111111-2222-3333-4444-555555555555", constants.KeyClassMonth, constants.SubscriptionTypeToolkit)
	ctx := context.Background()

	result, err := svc.RedeemSubscriptionKey(ctx, "42--HW1--"+scenarioCode)
	if err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	if result.Class != constants.KeyClassMonth {
		t.Fatalf("subscription want Month Key, got %s", result.Class)
	}
	if !result.Expiration.Equal(now.Add(30 * 24 * time.Hour)) {
		t.Fatalf("expiration want now+30d, got %v", result.Expiration)
	}
	if result.HWID != "HW1" || result.Status != constants.SubscriptionStatusActive {
		t.Fatalf("unexpected result: %+v", result)
	}
	redeemed := loadKey(t, db, first.ID)
	if redeemed.State != constants.KeyStateRedeemed || redeemed.Published {
		t.Fatalf("key should be redeemed and unpublished: %+v", redeemed)
	}

	_, err = svc.RedeemSubscriptionKey(ctx, "42--HW2--"+second.Code)
	if !errors.Is(err, ErrHwidMismatch) {
		t.Fatalf("expected hwid mismatch, got %v", err)
	}
	untouched := loadKey(t, db, second.ID)
	if untouched.State != constants.KeyStateActive || !untouched.Published {
		t.Fatalf("mismatched redemption must not consume key: %+v", untouched)
	}
	account := loadAccount(t, db, 42)
	if account.HWID == nil || *account.HWID != "HW1" {
		t.Fatalf("hwid should stay HW1")
	}
	if account.KeyExpiration == nil || !account.KeyExpiration.Equal(now.Add(30*24*time.Hour)) {
		t.Fatalf("expiration should be unchanged by rejected redemption: %v", account.KeyExpiration)
	}

	var history []models.RedemptionEntry
	if err := db.Where("uid = ?", 42).Find(&history).Error; err != nil {
		t.Fatalf("load history failed: %v", err)
	}
	if len(history) != 1 || history[0].Code != scenarioCode {
		t.Fatalf("expected one history entry, got %+v", history)
	}
}

func TestRedeemSubscriptionKeyRejectsReuseAndWrongType(t *testing.T) {
	svc, db := newRedemptionServiceForTest(t, time.Now())
	seedAccount(t, db, 1, 0, "")
	seedKey(t, db, scenarioCode, constants.KeyClassDay, constants.SubscriptionTypeToolkit)
	spinKey := seedKey(t, db, "GHOST-SPIN", "10", constants.SubscriptionTypeSpin)
	ctx := context.Background()

	if _, err := svc.RedeemSubscriptionKey(ctx, "1--HW--"+scenarioCode); err != nil {
		t.Fatalf("first redemption failed: %v", err)
	}
	if _, err := svc.RedeemSubscriptionKey(ctx, "1--HW--"+scenarioCode); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("second redemption want not found, got %v", err)
	}
	if _, err := svc.RedeemSubscriptionKey(ctx, "1--HW--"+spinKey.Code); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("spin key must not redeem as subscription, got %v", err)
	}
	if _, err := svc.RedeemSubscriptionKey(ctx, "1--HW"); !errors.Is(err, ErrMalformedKey) {
		t.Fatalf("expected malformed, got %v", err)
	}
}

func TestRedeemSubscriptionKeyUnknownAccountKeepsKey(t *testing.T) {
	svc, db := newRedemptionServiceForTest(t, time.Now())
	key := seedKey(t, db, scenarioCode, constants.KeyClassDay, constants.SubscriptionTypeToolkit)

	if _, err := svc.RedeemSubscriptionKey(context.Background(), "77--HW--"+scenarioCode); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected account not found, got %v", err)
	}
	if got := loadKey(t, db, key.ID); got.State != constants.KeyStateActive {
		t.Fatalf("key must stay active, got %s", got.State)
	}
}

func TestRedeemAccessKey(t *testing.T) {
	svc, db := newRedemptionServiceForTest(t, time.Now())
	key := seedKey(t, db, scenarioCode, constants.KeyClassWeek, constants.SubscriptionTypePlain)
	ctx := context.Background()

	result, err := svc.RedeemAccessKey(ctx, scenarioCode)
	if err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	if result.Class != constants.KeyClassWeek || result.Code != scenarioCode {
		t.Fatalf("unexpected result: %+v", result)
	}
	if got := loadKey(t, db, key.ID); got.State != constants.KeyStateRedeemed || got.Published {
		t.Fatalf("key should be consumed: %+v", got)
	}
	if _, err := svc.RedeemAccessKey(ctx, scenarioCode); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("second redemption want not found, got %v", err)
	}
	if _, err := svc.RedeemAccessKey(ctx, "GHOST-UNKNOWN"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("unknown key want not found, got %v", err)
	}
}

func TestRedeemAccessKeyIgnoresToolkitKeys(t *testing.T) {
	svc, db := newRedemptionServiceForTest(t, time.Now())
	key := seedKey(t, db, scenarioCode, constants.KeyClassMonth, constants.SubscriptionTypeToolkit)

	if _, err := svc.RedeemAccessKey(context.Background(), scenarioCode); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("toolkit key want not found, got %v", err)
	}
	if got := loadKey(t, db, key.ID); got.State != constants.KeyStateActive {
		t.Fatalf("toolkit key must stay active: %+v", got)
	}
}

func TestRedeemSpinKey(t *testing.T) {
	svc, db := newRedemptionServiceForTest(t, time.Now())
	seedAccount(t, db, 3, 4, "")
	seedKey(t, db, scenarioCode, "100", constants.SubscriptionTypeSpin)
	bad := seedKey(t, db, "GHOST-BAD-CLASS", "Month Key", constants.SubscriptionTypeSpin)
	ctx := context.Background()

	result, err := svc.RedeemSpinKey(ctx, "3-"+scenarioCode)
	if err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	if result.SpinsBought != 100 || result.SpinBalance != 104 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if got := loadAccount(t, db, 3); got.SpinBalance != 104 {
		t.Fatalf("balance want 104, got %d", got.SpinBalance)
	}

	if _, err := svc.RedeemSpinKey(ctx, "3-"+bad.Code); !errors.Is(err, ErrMalformedKey) {
		t.Fatalf("non-numeric spin class want malformed, got %v", err)
	}
	if got := loadKey(t, db, bad.ID); got.State != constants.KeyStateActive {
		t.Fatalf("malformed spin key must not be consumed")
	}
}

func TestRedeemSubscriptionKeyConcurrentAtMostOnce(t *testing.T) {
	svc, db := newRedemptionServiceForTest(t, time.Now())
	const attempts = 16
	for uid := uint(1); uid <= attempts; uid++ {
		seedAccount(t, db, uid, 0, "")
	}
	key := seedKey(t, db, scenarioCode, constants.KeyClassMonth, constants.SubscriptionTypeToolkit)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		success  int
		notFound int
	)
	for uid := uint(1); uid <= attempts; uid++ {
		wg.Add(1)
		go func(uid uint) {
			defer wg.Done()
			_, err := svc.RedeemSubscriptionKey(context.Background(), fmt.Sprintf("%d--HW--%s", uid, scenarioCode))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case errors.Is(err, ErrKeyNotFound):
				notFound++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(uid)
	}
	wg.Wait()

	if success != 1 || notFound != attempts-1 {
		t.Fatalf("want exactly one success, got success=%d notFound=%d", success, notFound)
	}
	got := loadKey(t, db, key.ID)
	if got.State != constants.KeyStateRedeemed || got.RedeemedUID == nil {
		t.Fatalf("key should be redeemed by one account: %+v", got)
	}
	var granted int64
	if err := db.Model(&models.Account{}).Where("key_expiration IS NOT NULL").Count(&granted).Error; err != nil {
		t.Fatalf("count granted failed: %v", err)
	}
	if granted != 1 {
		t.Fatalf("want exactly one entitled account, got %d", granted)
	}
}

func TestRedeemSubscriptionKeyConcurrentFileStore(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "ghost.db") + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(8)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	svc := NewRedemptionService(repository.NewStore(db), NewPrizeDrawEngine(constants.DefaultDrawDilution, nil))

	const attempts = 8
	for uid := uint(1); uid <= attempts; uid++ {
		seedAccount(t, db, uid, 0, "")
	}
	key := seedKey(t, db, scenarioCode, constants.KeyClassMonth, constants.SubscriptionTypeToolkit)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	start := make(chan struct{})
	for uid := uint(1); uid <= attempts; uid++ {
		wg.Add(1)
		go func(uid uint) {
			defer wg.Done()
			<-start
			_, err := svc.RedeemSubscriptionKey(context.Background(), fmt.Sprintf("%d--HW--%s", uid, scenarioCode))
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}(uid)
	}
	close(start)
	wg.Wait()

	// 失败方可能是 ErrKeyNotFound，也可能是写锁冲突；已兑换次数必须恰好为一
	if success != 1 {
		t.Fatalf("want exactly one success, got %d", success)
	}
	got := loadKey(t, db, key.ID)
	if got.State != constants.KeyStateRedeemed || got.RedeemedUID == nil {
		t.Fatalf("key should be redeemed by one account: %+v", got)
	}
	var granted int64
	if err := db.Model(&models.Account{}).Where("key_expiration IS NOT NULL").Count(&granted).Error; err != nil {
		t.Fatalf("count granted failed: %v", err)
	}
	if granted != 1 {
		t.Fatalf("want exactly one entitled account, got %d", granted)
	}
}

func TestGetSpinBalance(t *testing.T) {
	now := time.Now()
	svc, db := newRedemptionServiceForTest(t, now)
	seedAccount(t, db, 8, 12, "")

	view, err := svc.GetSpinBalance(context.Background(), 8)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if view.SpinBalance != 12 || view.Status != constants.SubscriptionStatusNone || view.Expiration != nil {
		t.Fatalf("unexpected view: %+v", view)
	}
	if _, err := svc.GetSpinBalance(context.Background(), 9); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected account not found, got %v", err)
	}
}
