package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/ghost-toolkit/internal/app"
	"github.com/ghost-toolkit/internal/config"
	"github.com/ghost-toolkit/internal/logger"
	"github.com/ghost-toolkit/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ansiReset     = "\033[0m"
	ansiBold      = "\033[1m"
	ansiDim       = "\033[2m"
	ansiGreen     = "\033[32m"
	ansiCyan      = "\033[36m"
	ansiBrightMag = "\033[95m"
)

func main() {
	printStartupBanner()

	// 解析命令行参数
	var mode string
	flag.StringVar(&mode, "mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.Parse()

	// 加载配置
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()

	if cfg.Server.Mode == "release" {
		if isWeakSecret(cfg.JWT.SecretKey) {
			stdLog.Fatalf("JWT secret 过弱或仍为默认值，请在生产环境中配置强随机密钥")
		}
	} else if isWeakSecret(cfg.JWT.SecretKey) {
		stdLog.Printf("警告: JWT secret 过弱或仍为默认值，建议在生产环境中更换")
	}

	// 初始化数据库
	db, err := models.OpenDB(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.ToPoolConfig(), cfg.Server.Mode == "debug")
	if err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}

	// 自动迁移数据库表
	if err := models.AutoMigrate(db); err != nil {
		stdLog.Fatalf("数据库迁移失败: %v", err)
	}

	// 初始化默认管理员账号
	if cfg.Server.Mode == "release" && cfg.Admin.Password == "" && cfg.Admin.PasswordHash == "" {
		stdLog.Printf("警告: 未配置 admin.password / admin.password_hash，已跳过默认管理员初始化")
	} else if err := models.InitDefaultAdmin(db, cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.PasswordHash); err != nil {
		stdLog.Printf("警告: 初始化默认管理员失败: %v", err)
	}

	// 设置 Gin 模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := app.Run(app.Options{
		Config:  cfg,
		DB:      db,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	}); err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}

func printStartupBanner() {
	fmt.Println(ansiBrightMag + "╔══════════════════════════════════════════════════════╗" + ansiReset)
	fmt.Println(ansiBrightMag + "║               👻 Ghost Toolkit API 启动中               ║" + ansiReset)
	fmt.Println(ansiBrightMag + "╚══════════════════════════════════════════════════════╝" + ansiReset)
	fmt.Println(ansiCyan + " ██████╗ ██╗  ██╗ ██████╗ ███████╗████████╗" + ansiReset)
	fmt.Println(ansiCyan + "██╔════╝ ██║  ██║██╔═══██╗██╔════╝╚══██╔══╝" + ansiReset)
	fmt.Println(ansiCyan + "██║  ███╗███████║██║   ██║███████╗   ██║   " + ansiReset)
	fmt.Println(ansiCyan + "██║   ██║██╔══██║██║   ██║╚════██║   ██║   " + ansiReset)
	fmt.Println(ansiCyan + "╚██████╔╝██║  ██║╚██████╔╝███████║   ██║   " + ansiReset)
	fmt.Println(ansiCyan + " ╚═════╝ ╚═╝  ╚═╝ ╚═════╝ ╚══════╝   ╚═╝   " + ansiReset)
	fmt.Println(ansiGreen + ansiBold + "Access keys · Subscriptions · Prize draws" + ansiReset)
	fmt.Println(ansiDim + "--------------------------------------------------------------" + ansiReset)
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	normalized := strings.ToLower(secret)
	if strings.Contains(normalized, "change-me") ||
		strings.Contains(normalized, "change-in-production") ||
		strings.Contains(normalized, "your-secret-key") {
		return true
	}
	return false
}
