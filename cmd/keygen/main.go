package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ghost-toolkit/internal/config"
	"github.com/ghost-toolkit/internal/constants"
	"github.com/ghost-toolkit/internal/logger"
	"github.com/ghost-toolkit/internal/models"
	"github.com/ghost-toolkit/internal/repository"
	"github.com/ghost-toolkit/internal/service"
)

type keygenOptions struct {
	title            string
	subscriptionType string
	spins            int
	count            int
	output           string
	hashPassword     string
}

func main() {
	var opts keygenOptions
	flag.StringVar(&opts.title, "title", constants.KeyTitleMonth, "批次标题: Day Access | Week Access | Month Access")
	flag.StringVar(&opts.subscriptionType, "type", constants.SubscriptionTypeToolkit, "订阅类型: hf_toolkit_subscription_time | plain_subscription | spin_balance")
	flag.IntVar(&opts.spins, "spins", 0, "点数密钥的点数（仅 spin_balance）")
	flag.IntVar(&opts.count, "count", 1, "生成数量")
	flag.StringVar(&opts.output, "out", "", "输出文件，默认标准输出")
	flag.StringVar(&opts.hashPassword, "hash-password", "", "仅输出该密码的 bcrypt 哈希（用于 admin.password_hash）")
	flag.Parse()

	if opts.hashPassword != "" {
		hash, err := service.HashPassword(opts.hashPassword)
		if err != nil {
			fmt.Fprintf(os.Stderr, "hash password failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()

	db, err := models.OpenDB(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.ToPoolConfig(), false)
	if err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		stdLog.Fatalf("数据库迁移失败: %v", err)
	}

	out := io.Writer(os.Stdout)
	if opts.output != "" {
		file, err := os.Create(opts.output)
		if err != nil {
			stdLog.Fatalf("创建输出文件失败: %v", err)
		}
		defer file.Close()
		out = file
	}

	if err := run(context.Background(), repository.NewStore(db), cfg.Keys.MaxBatchSize, opts, out); err != nil {
		stdLog.Fatalf("生成密钥失败: %v", err)
	}
}

// run 同步生成一个批次并逐行写出密钥
func run(ctx context.Context, store repository.Store, maxBatchSize int, opts keygenOptions, out io.Writer) error {
	keys := service.NewKeyService(store, service.NewKeyCodec(), nil, service.KeyServiceOptions{
		MaxBatchSize:   maxBatchSize,
		AsyncThreshold: maxBatchSize + 1,
	})
	result, err := keys.GenerateKeys(ctx, service.GenerateKeysInput{
		Title:            opts.title,
		SubscriptionType: opts.subscriptionType,
		SpinCount:        opts.spins,
		Count:            opts.count,
	})
	if err != nil {
		return err
	}

	w := bufio.NewWriter(out)
	for _, key := range result.Keys {
		if _, err := fmt.Fprintln(w, key.Code); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	logger.Infow("keygen_batch_written",
		"batch_no", result.Batch.BatchNo,
		"class", result.Batch.Class,
		"count", len(result.Keys),
	)
	return nil
}
