package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/ghost-toolkit/internal/constants"
	"github.com/ghost-toolkit/internal/models"
	"github.com/ghost-toolkit/internal/repository"
	"github.com/ghost-toolkit/internal/service"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var keyPattern = regexp.MustCompile(`^GHOST-[0-9A-F]{8}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{12}$`)

func setupKeygenStore(t *testing.T) (*repository.GormStore, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:keygen_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return repository.NewStore(db), db
}

func TestRunWritesOneKeyPerLine(t *testing.T) {
	store, db := setupKeygenStore(t)
	var out bytes.Buffer
	opts := keygenOptions{title: constants.KeyTitleDay, subscriptionType: constants.SubscriptionTypeToolkit, count: 5}

	if err := run(context.Background(), store, 100, opts, &out); err != nil {
		t.Fatalf("run keygen failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("want 5 keys, got %d", len(lines))
	}
	for _, line := range lines {
		if !keyPattern.MatchString(line) {
			t.Fatalf("unexpected key format: %s", line)
		}
	}

	var stored int64
	if err := db.Model(&models.AccessKey{}).Where("class = ?", constants.KeyClassDay).Count(&stored).Error; err != nil {
		t.Fatalf("count keys failed: %v", err)
	}
	if stored != 5 {
		t.Fatalf("want 5 stored keys, got %d", stored)
	}
}

func TestRunRejectsOversizedBatch(t *testing.T) {
	store, _ := setupKeygenStore(t)
	opts := keygenOptions{title: constants.KeyTitleDay, subscriptionType: constants.SubscriptionTypeToolkit, count: 11}
	if err := run(context.Background(), store, 10, opts, &bytes.Buffer{}); !errors.Is(err, service.ErrKeyBatchTooLarge) {
		t.Fatalf("expected too large error, got %v", err)
	}
}
