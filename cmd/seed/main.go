package main

import (
	"context"
	"errors"

	"github.com/ghost-toolkit/internal/config"
	"github.com/ghost-toolkit/internal/constants"
	"github.com/ghost-toolkit/internal/logger"
	"github.com/ghost-toolkit/internal/models"
	"github.com/ghost-toolkit/internal/repository"
	"github.com/ghost-toolkit/internal/service"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()

	db, err := models.OpenDB(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.ToPoolConfig(), false)
	if err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(db); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	if err := seed(context.Background(), repository.NewStore(db)); err != nil {
		stdLog.Fatalf("Failed to seed data: %v", err)
	}
	stdLog.Printf("Seed completed")
}

// seed 写入演示账户、奖品与密钥，可重复执行
func seed(ctx context.Context, store repository.Store) error {
	accounts := service.NewAccountService(store)
	for _, input := range []service.CreateAccountInput{
		{UID: 1001, SpinBalance: 5},
		{UID: 1002, SpinBalance: 0, HWID: "DEMO-HWID-1002"},
		{UID: 1003, SpinBalance: 20},
	} {
		if _, err := accounts.CreateAccount(ctx, input); err != nil {
			if errors.Is(err, service.ErrAccountExists) {
				logger.Infow("seed_account_exists", "uid", input.UID)
				continue
			}
			return err
		}
		logger.Infow("seed_account_created", "uid", input.UID)
	}

	prizes := service.NewPrizeService(store)
	existing, total, err := prizes.ListPrizes(ctx, repository.PrizeListFilter{Page: 1, PageSize: 1})
	if err != nil {
		return err
	}
	if total > 0 {
		logger.Infow("seed_prizes_exist", "count", total, "sample", existing[0].Name)
	} else {
		cash := models.NewMoneyFromDecimal(decimal.NewFromInt(25))
		for _, input := range []service.CreatePrizeInput{
			{Name: constants.PrizeNameCash, PayoutKey: "DEMO-CASH-0001", Amount: &cash},
			{Name: constants.PrizeNameHFSub, PayoutKey: "DEMO-HF-0001", PayoutValue: "1 Month"},
			{Name: constants.PrizeNameGhost, PayoutKey: "DEMO-GHOST-0001", PayoutValue: "1 Week"},
		} {
			prize, err := prizes.CreatePrize(ctx, input)
			if err != nil {
				return err
			}
			logger.Infow("seed_prize_created", "name", prize.Name, "payout_value", prize.PayoutValue)
		}
	}

	keys := service.NewKeyService(store, service.NewKeyCodec(), nil, service.KeyServiceOptions{})
	for _, input := range []service.GenerateKeysInput{
		{Title: constants.KeyTitleMonth, SubscriptionType: constants.SubscriptionTypeToolkit, Count: 3},
		{Title: constants.KeyTitleDay, SubscriptionType: constants.SubscriptionTypePlain, Count: 2},
		{SubscriptionType: constants.SubscriptionTypeSpin, SpinCount: 10, Count: 2},
	} {
		result, err := keys.GenerateKeys(ctx, input)
		if err != nil {
			return err
		}
		for _, key := range result.Keys {
			logger.Infow("seed_key_created", "class", key.Class, "type", key.SubscriptionType, "code", key.Code)
		}
	}
	return nil
}
